package events

import (
	"time"

	"github.com/spec-kit/relief-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventHelpRequestCreated       EventType = "help_request_created"
	EventHelpRequestStatusChanged EventType = "help_request_status_changed"
	EventTicketCreated            EventType = "ticket_created"
	EventTicketStatusChanged      EventType = "ticket_status_changed"
	EventTicketReplyAdded         EventType = "ticket_reply_added"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	AccountID string      `json:"account_id"`
	Role      domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	ResourceID string      `json:"resource_id"`
	Actor      Actor       `json:"actor"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// HelpRequestCreatedPayload payload.
type HelpRequestCreatedPayload struct {
	DisasterType string `json:"disaster_type"`
	Location     string `json:"location"`
	Priority     string `json:"priority,omitempty"`
}

// HelpRequestStatusChangedPayload payload.
type HelpRequestStatusChangedPayload struct {
	OldStatus domain.HelpRequestStatus `json:"old_status"`
	NewStatus domain.HelpRequestStatus `json:"new_status"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Subject       string  `json:"subject"`
	HelpRequestID *string `json:"help_request_id,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Reason    string              `json:"reason,omitempty"`
}

// TicketReplyAddedPayload payload.
type TicketReplyAddedPayload struct {
	ReplyID        string `json:"reply_id"`
	AuthorID       string `json:"author_id"`
	MessagePreview string `json:"message_preview"`
}
