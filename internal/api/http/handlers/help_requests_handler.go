package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/relief-service/internal/api/dto"
	"github.com/spec-kit/relief-service/internal/auth"
	"github.com/spec-kit/relief-service/internal/domain"
	"github.com/spec-kit/relief-service/internal/service"
	apperrors "github.com/spec-kit/relief-service/pkg/util"
)

const dateLayout = "2006-01-02"

// HelpRequestsHandler manages disaster-relief request endpoints.
type HelpRequestsHandler struct {
	service *service.HelpRequestService
}

// NewHelpRequestsHandler constructs handler.
func NewHelpRequestsHandler(requestService *service.HelpRequestService) *HelpRequestsHandler {
	return &HelpRequestsHandler{service: requestService}
}

// Create POST /help-requests.
func (h *HelpRequestsHandler) Create(c *fiber.Ctx) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}
	var req dto.HelpRequestPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	request, err := h.service.Create(c.Context(), principal, helpRequestInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": helpRequestResponse(request, "")})
}

// List GET /help-requests.
func (h *HelpRequestsHandler) List(c *fiber.Ctx) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}
	items, err := h.service.List(c.Context(), principal)
	if err != nil {
		return err
	}
	resp := make([]dto.HelpRequestResponse, 0, len(items))
	for i := range items {
		resp = append(resp, helpRequestResponse(&items[i].HelpRequest, items[i].OwnerName))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Get GET /help-requests/:id.
func (h *HelpRequestsHandler) Get(c *fiber.Ctx) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}
	request, err := h.service.Get(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": helpRequestResponse(request, "")})
}

// Update PUT /help-requests/:id.
func (h *HelpRequestsHandler) Update(c *fiber.Ctx) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}
	var req dto.HelpRequestPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	request, err := h.service.Update(c.Context(), principal, c.Params("id"), helpRequestInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": helpRequestResponse(request, "")})
}

// Delete DELETE /help-requests/:id.
func (h *HelpRequestsHandler) Delete(c *fiber.Ctx) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Context(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Advance POST /staff/help-requests/:id/advance.
func (h *HelpRequestsHandler) Advance(c *fiber.Ctx) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}
	request, err := h.service.Advance(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": helpRequestResponse(request, "")})
}

func helpRequestInput(req dto.HelpRequestPayload) service.HelpRequestInput {
	return service.HelpRequestInput{
		DisasterType:    req.DisasterType,
		DisasterDate:    req.DisasterDate,
		Location:        req.Location,
		AffectedPersons: req.AffectedPersons,
		Priority:        req.Priority,
		Description:     req.Description,
	}
}

func helpRequestResponse(request *domain.HelpRequest, ownerName string) dto.HelpRequestResponse {
	return dto.HelpRequestResponse{
		ID:              request.ID,
		OwnerID:         request.OwnerID,
		OwnerName:       ownerName,
		DisasterType:    request.DisasterType,
		DisasterDate:    request.DisasterDate.Format(dateLayout),
		Location:        request.Location,
		AffectedPersons: request.AffectedPersons,
		Priority:        request.Priority,
		Description:     request.Description,
		Status:          request.Status,
		CreatedAt:       request.CreatedAt,
	}
}
