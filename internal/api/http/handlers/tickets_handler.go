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

// TicketsHandler manages support ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.Create(c.Context(), principal, req.Subject, req.Description, req.HelpRequestID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket, principal.DisplayName, 0)})
}

// List GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}
	items, err := h.service.List(c.Context(), principal)
	if err != nil {
		return err
	}
	resp := make([]dto.TicketSummary, 0, len(items))
	for i := range items {
		resp = append(resp, ticketSummary(&items[i].Ticket, items[i].OwnerName, items[i].ReplyCount))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}
	detail, err := h.service.Get(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetailResponse(detail)})
}

// Reply POST /tickets/:id/replies.
func (h *TicketsHandler) Reply(c *fiber.Ctx) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	reply, ticket, err := h.service.Reply(c.Context(), principal, c.Params("id"), req.Message)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"reply":         replyResponse(reply),
		"ticket_status": ticket.Status,
	}})
}

// Close POST /tickets/:id/close.
func (h *TicketsHandler) Close(c *fiber.Ctx) error {
	return h.setStatus(c, true)
}

// Reopen POST /tickets/:id/reopen.
func (h *TicketsHandler) Reopen(c *fiber.Ctx) error {
	return h.setStatus(c, false)
}

func (h *TicketsHandler) setStatus(c *fiber.Ctx, close bool) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}

	var (
		ticket  *domain.Ticket
		changed bool
	)
	if close {
		ticket, changed, err = h.service.Close(c.Context(), principal, c.Params("id"))
	} else {
		ticket, changed, err = h.service.Reopen(c.Context(), principal, c.Params("id"))
	}
	if err != nil {
		return err
	}

	resp := dto.TicketStatusResponse{ID: ticket.ID, Status: ticket.Status, Changed: changed}
	if !changed {
		if close {
			resp.Notice = "ticket is already closed"
		} else {
			resp.Notice = "ticket is not closed"
		}
	}
	return c.JSON(fiber.Map{"data": resp})
}

func ticketSummary(ticket *domain.Ticket, ownerName string, replyCount int) dto.TicketSummary {
	return dto.TicketSummary{
		ID:            ticket.ID,
		Subject:       ticket.Subject,
		Status:        ticket.Status,
		OwnerName:     ownerName,
		HelpRequestID: ticket.HelpRequestID,
		ReplyCount:    replyCount,
		CreatedAt:     ticket.CreatedAt,
	}
}

func ticketDetailResponse(detail *service.TicketDetail) dto.TicketDetailResponse {
	replies := make([]dto.ReplyResponse, 0, len(detail.Replies))
	for i := range detail.Replies {
		replies = append(replies, replyResponse(&detail.Replies[i]))
	}
	return dto.TicketDetailResponse{
		ID:            detail.Ticket.ID,
		OwnerID:       detail.Ticket.OwnerID,
		OwnerName:     detail.OwnerName,
		Subject:       detail.Ticket.Subject,
		Description:   detail.Ticket.Description,
		HelpRequestID: detail.Ticket.HelpRequestID,
		Status:        detail.Ticket.Status,
		CreatedAt:     detail.Ticket.CreatedAt,
		Replies:       replies,
	}
}

func replyResponse(reply *domain.Reply) dto.ReplyResponse {
	return dto.ReplyResponse{
		ID:         reply.ID,
		AuthorID:   reply.AuthorID,
		AuthorName: reply.AuthorName,
		Message:    reply.Message,
		CreatedAt:  reply.CreatedAt,
	}
}
