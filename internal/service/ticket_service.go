package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/relief-service/internal/domain"
	"github.com/spec-kit/relief-service/internal/events"
	"github.com/spec-kit/relief-service/internal/repository"
	apperrors "github.com/spec-kit/relief-service/pkg/util"
)

// maxReplyLength bounds a reply message, in characters.
const maxReplyLength = 500

// TicketService governs the support ticket lifecycle and its reply thread.
type TicketService struct {
	tickets    repository.TicketRepository
	replies    repository.ReplyRepository
	requests   repository.HelpRequestRepository
	accounts   repository.AccountRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo      repository.TicketRepository
	ReplyRepo       repository.ReplyRepository
	HelpRequestRepo repository.HelpRequestRepository
	AccountRepo     repository.AccountRepository
	Dispatcher      events.Dispatcher
}

// TicketDetail is a ticket with its thread and resolved owner name.
type TicketDetail struct {
	Ticket    domain.Ticket
	OwnerName string
	Replies   []domain.Reply
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		replies:    deps.ReplyRepo,
		requests:   deps.HelpRequestRepo,
		accounts:   deps.AccountRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Create opens a new ticket for the caller. The optional originating help
// request must exist and belong to the caller.
func (s *TicketService) Create(ctx context.Context, principal domain.Principal, subject, description string, helpRequestID *string) (*domain.Ticket, error) {
	details := map[string]any{}
	subject = strings.TrimSpace(subject)
	description = strings.TrimSpace(description)
	if subject == "" {
		details["subject"] = "required"
	}
	if description == "" {
		details["description"] = "required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid ticket fields", details)
	}

	if helpRequestID != nil {
		request, err := s.requests.GetByID(ctx, *helpRequestID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, apperrors.NewNotFoundOrForbidden("help request")
			}
			return nil, apperrors.NewStorageError(err)
		}
		if request.OwnerID != principal.AccountID {
			return nil, apperrors.NewNotFoundOrForbidden("help request")
		}
	}

	ticket := &domain.Ticket{
		OwnerID:       principal.AccountID,
		Subject:       subject,
		Description:   description,
		HelpRequestID: helpRequestID,
		Status:        domain.TicketStatusOpen,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:       events.EventTicketCreated,
		ResourceID: ticket.ID,
		Actor:      actorFor(principal),
		Payload: events.TicketCreatedPayload{
			Subject:       ticket.Subject,
			HelpRequestID: ticket.HelpRequestID,
		},
	})
	return ticket, nil
}

// Get returns the ticket with its reply thread. Visible to the owner and to
// staff; other citizens get the collapsed not-found outcome.
func (s *TicketService) Get(ctx context.Context, principal domain.Principal, id string) (*TicketDetail, error) {
	ticket, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.IsOwnerOrStaff(principal, ticket.OwnerID) {
		return nil, apperrors.NewNotFoundOrForbidden("ticket")
	}

	replies, err := s.replies.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	ownerName := ticket.OwnerID
	if owner, err := s.accounts.GetByID(ctx, ticket.OwnerID); err == nil {
		ownerName = owner.DisplayName()
	}

	return &TicketDetail{Ticket: *ticket, OwnerName: ownerName, Replies: replies}, nil
}

// Reply appends a message to the thread and applies the status side effects:
// a staff reply picks up an OPEN ticket (IN_PROGRESS) and reopens a CLOSED
// one; an owner reply to an IN_PROGRESS ticket resets it to OPEN. The closed
// state is checked before any write, so a non-staff caller never reopens a
// CLOSED ticket by replying.
func (s *TicketService) Reply(ctx context.Context, principal domain.Principal, id, message string) (*domain.Reply, *domain.Ticket, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, nil, apperrors.NewValidationError("invalid reply", map[string]any{"message": "required"})
	}
	if utf8.RuneCountInString(message) > maxReplyLength {
		return nil, nil, apperrors.NewValidationError("invalid reply", map[string]any{"message": "must be at most 500 characters"})
	}

	ticket, err := s.fetch(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !domain.IsOwnerOrStaff(principal, ticket.OwnerID) {
		return nil, nil, apperrors.NewForbidden("not allowed to reply to this ticket")
	}
	if ticket.Status == domain.TicketStatusClosed && !principal.Role.IsStaff() {
		return nil, nil, apperrors.NewInvalidState("ticket is closed")
	}

	reply := &domain.Reply{
		TicketID:   ticket.ID,
		AuthorID:   principal.AccountID,
		AuthorName: principal.DisplayName,
		Message:    message,
	}
	if err := s.replies.Create(ctx, reply); err != nil {
		return nil, nil, apperrors.NewStorageError(err)
	}

	newStatus := ticket.Status
	if principal.Role.IsStaff() {
		switch ticket.Status {
		case domain.TicketStatusOpen:
			newStatus = domain.TicketStatusInProgress
		case domain.TicketStatusClosed:
			newStatus = domain.TicketStatusOpen
		}
	} else if ticket.Status == domain.TicketStatusInProgress {
		newStatus = domain.TicketStatusOpen
	}

	if newStatus != ticket.Status {
		oldStatus := ticket.Status
		if err := s.tickets.UpdateStatus(ctx, ticket.ID, newStatus); err != nil {
			return nil, nil, apperrors.NewStorageError(err)
		}
		ticket.Status = newStatus
		publishEvent(ctx, s.dispatcher, events.Event{
			Type:       events.EventTicketStatusChanged,
			ResourceID: ticket.ID,
			Actor:      actorFor(principal),
			Payload: events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: newStatus,
				Reason:    "reply",
			},
		})
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:       events.EventTicketReplyAdded,
		ResourceID: ticket.ID,
		Actor:      actorFor(principal),
		Payload: events.TicketReplyAddedPayload{
			ReplyID:        reply.ID,
			AuthorID:       reply.AuthorID,
			MessagePreview: stringPreview(reply.Message, 120),
		},
	})
	return reply, ticket, nil
}

// Close moves a ticket to CLOSED. Staff only. Closing an already-closed
// ticket is a no-op reported through the changed flag.
func (s *TicketService) Close(ctx context.Context, principal domain.Principal, id string) (*domain.Ticket, bool, error) {
	return s.setStatus(ctx, principal, id, domain.TicketStatusClosed, "closed")
}

// Reopen moves a CLOSED ticket back to OPEN. Staff only. Reopening a ticket
// that is not closed is a no-op reported through the changed flag.
func (s *TicketService) Reopen(ctx context.Context, principal domain.Principal, id string) (*domain.Ticket, bool, error) {
	return s.setStatus(ctx, principal, id, domain.TicketStatusOpen, "reopened")
}

func (s *TicketService) setStatus(ctx context.Context, principal domain.Principal, id string, target domain.TicketStatus, reason string) (*domain.Ticket, bool, error) {
	if !principal.Role.IsStaff() {
		return nil, false, apperrors.NewForbidden("only staff may change ticket status")
	}
	ticket, err := s.fetch(ctx, id)
	if err != nil {
		return nil, false, err
	}

	switch target {
	case domain.TicketStatusClosed:
		if ticket.Status == domain.TicketStatusClosed {
			return ticket, false, nil
		}
	case domain.TicketStatusOpen:
		if ticket.Status != domain.TicketStatusClosed {
			return ticket, false, nil
		}
	}

	oldStatus := ticket.Status
	if err := s.tickets.UpdateStatus(ctx, ticket.ID, target); err != nil {
		return nil, false, apperrors.NewStorageError(err)
	}
	ticket.Status = target

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:       events.EventTicketStatusChanged,
		ResourceID: ticket.ID,
		Actor:      actorFor(principal),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: target,
			Reason:    reason,
		},
	})
	return ticket, true, nil
}

// List returns all tickets for staff and only the caller's own otherwise,
// newest first.
func (s *TicketService) List(ctx context.Context, principal domain.Principal) ([]domain.TicketListItem, error) {
	var (
		items []domain.TicketListItem
		err   error
	)
	if principal.Role.IsStaff() {
		items, err = s.tickets.ListAll(ctx)
	} else {
		items, err = s.tickets.ListByOwner(ctx, principal.AccountID)
	}
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return items, nil
}

func (s *TicketService) fetch(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFoundOrForbidden("ticket")
		}
		return nil, apperrors.NewStorageError(err)
	}
	return ticket, nil
}
