package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/relief-service/internal/domain"
	"github.com/spec-kit/relief-service/internal/events"
	"github.com/spec-kit/relief-service/internal/repository"
	apperrors "github.com/spec-kit/relief-service/pkg/util"
)

const disasterDateLayout = "2006-01-02"

// HelpRequestService governs the disaster-relief request lifecycle.
type HelpRequestService struct {
	requests   repository.HelpRequestRepository
	dispatcher events.Dispatcher
}

// NewHelpRequestService constructs the service.
func NewHelpRequestService(requests repository.HelpRequestRepository, dispatcher events.Dispatcher) *HelpRequestService {
	return &HelpRequestService{requests: requests, dispatcher: dispatcher}
}

// HelpRequestInput carries raw form fields; parsing and validation happen
// here so every failure surfaces as one ValidationError naming the fields.
type HelpRequestInput struct {
	DisasterType    string
	DisasterDate    string
	Location        string
	AffectedPersons string
	Priority        string
	Description     string
}

type parsedHelpRequestFields struct {
	disasterType    string
	disasterDate    time.Time
	location        string
	affectedPersons *int
	priority        string
	description     string
}

func validateHelpRequestInput(input HelpRequestInput) (parsedHelpRequestFields, error) {
	details := map[string]any{}
	var fields parsedHelpRequestFields

	fields.disasterType = strings.TrimSpace(input.DisasterType)
	if fields.disasterType == "" {
		details["disaster_type"] = "required"
	}

	if strings.TrimSpace(input.DisasterDate) == "" {
		details["disaster_date"] = "required"
	} else {
		date, err := time.Parse(disasterDateLayout, strings.TrimSpace(input.DisasterDate))
		if err != nil {
			details["disaster_date"] = "must be a date in YYYY-MM-DD format"
		} else {
			fields.disasterDate = date
		}
	}

	fields.location = strings.TrimSpace(input.Location)
	if fields.location == "" {
		details["location"] = "required"
	}

	fields.description = strings.TrimSpace(input.Description)
	if fields.description == "" {
		details["description"] = "required"
	}

	if raw := strings.TrimSpace(input.AffectedPersons); raw != "" {
		count, err := strconv.Atoi(raw)
		if err != nil || count < 0 {
			details["affected_persons"] = "must be a non-negative integer"
		} else {
			fields.affectedPersons = &count
		}
	}

	fields.priority = strings.TrimSpace(input.Priority)

	if len(details) > 0 {
		return parsedHelpRequestFields{}, apperrors.NewValidationError("invalid help request fields", details)
	}
	return fields, nil
}

// Create validates the fields and inserts a new PENDING request owned by the
// caller.
func (s *HelpRequestService) Create(ctx context.Context, principal domain.Principal, input HelpRequestInput) (*domain.HelpRequest, error) {
	fields, err := validateHelpRequestInput(input)
	if err != nil {
		return nil, err
	}

	request := &domain.HelpRequest{
		OwnerID:         principal.AccountID,
		DisasterType:    fields.disasterType,
		DisasterDate:    fields.disasterDate,
		Location:        fields.location,
		AffectedPersons: fields.affectedPersons,
		Priority:        fields.priority,
		Description:     fields.description,
		Status:          domain.HelpRequestStatusPending,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:       events.EventHelpRequestCreated,
		ResourceID: request.ID,
		Actor:      actorFor(principal),
		Payload: events.HelpRequestCreatedPayload{
			DisasterType: request.DisasterType,
			Location:     request.Location,
			Priority:     request.Priority,
		},
	})
	return request, nil
}

// Get returns the request when the caller is its owner or staff. Anyone else
// receives the same not-found outcome as a missing id.
func (s *HelpRequestService) Get(ctx context.Context, principal domain.Principal, id string) (*domain.HelpRequest, error) {
	return s.getOwnedOrStaff(ctx, principal, id)
}

// Update mutates a PENDING request in place. Owner only; field validation is
// identical to Create and the status never changes here.
func (s *HelpRequestService) Update(ctx context.Context, principal domain.Principal, id string, input HelpRequestInput) (*domain.HelpRequest, error) {
	request, err := s.getOwned(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if request.Status != domain.HelpRequestStatusPending {
		return nil, apperrors.NewInvalidState("help request can only be edited while pending")
	}

	fields, err := validateHelpRequestInput(input)
	if err != nil {
		return nil, err
	}

	request.DisasterType = fields.disasterType
	request.DisasterDate = fields.disasterDate
	request.Location = fields.location
	request.AffectedPersons = fields.affectedPersons
	request.Priority = fields.priority
	request.Description = fields.description
	if err := s.requests.Update(ctx, request); err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return request, nil
}

// Delete removes a PENDING request. Owner only; this is the only hard delete
// in the system.
func (s *HelpRequestService) Delete(ctx context.Context, principal domain.Principal, id string) error {
	request, err := s.getOwned(ctx, principal, id)
	if err != nil {
		return err
	}
	if request.Status != domain.HelpRequestStatusPending {
		return apperrors.NewInvalidState("help request can only be deleted while pending")
	}
	if err := s.requests.Delete(ctx, id); err != nil {
		return apperrors.NewStorageError(err)
	}
	return nil
}

// List returns all requests for admins, and only the caller's own otherwise,
// newest first.
func (s *HelpRequestService) List(ctx context.Context, principal domain.Principal) ([]domain.HelpRequestListItem, error) {
	var (
		items []domain.HelpRequestListItem
		err   error
	)
	if principal.Role.IsAdmin() {
		items, err = s.requests.ListAll(ctx)
	} else {
		items, err = s.requests.ListByOwner(ctx, principal.AccountID)
	}
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return items, nil
}

// Advance moves a request one step forward in its lifecycle. Staff only;
// transitions never skip a state and never regress.
func (s *HelpRequestService) Advance(ctx context.Context, principal domain.Principal, id string) (*domain.HelpRequest, error) {
	if !principal.Role.IsStaff() {
		return nil, apperrors.NewForbidden("only staff may advance help requests")
	}
	request, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	next, ok := request.Status.Next()
	if !ok {
		return nil, apperrors.NewInvalidState("help request already resolved")
	}
	oldStatus := request.Status
	request.Status = next
	if err := s.requests.Update(ctx, request); err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:       events.EventHelpRequestStatusChanged,
		ResourceID: request.ID,
		Actor:      actorFor(principal),
		Payload: events.HelpRequestStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: request.Status,
		},
	})
	return request, nil
}

func (s *HelpRequestService) fetch(ctx context.Context, id string) (*domain.HelpRequest, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFoundOrForbidden("help request")
		}
		return nil, apperrors.NewStorageError(err)
	}
	return request, nil
}

// getOwned fetches the request and hides it from everyone but the owner.
func (s *HelpRequestService) getOwned(ctx context.Context, principal domain.Principal, id string) (*domain.HelpRequest, error) {
	request, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.OwnerID != principal.AccountID {
		return nil, apperrors.NewNotFoundOrForbidden("help request")
	}
	return request, nil
}

// getOwnedOrStaff additionally grants read access to staff.
func (s *HelpRequestService) getOwnedOrStaff(ctx context.Context, principal domain.Principal, id string) (*domain.HelpRequest, error) {
	request, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.IsOwnerOrStaff(principal, request.OwnerID) {
		return nil, apperrors.NewNotFoundOrForbidden("help request")
	}
	return request, nil
}
