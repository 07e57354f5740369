package dto

import (
	"time"

	"github.com/spec-kit/relief-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject       string  `json:"subject"`
	Description   string  `json:"description"`
	HelpRequestID *string `json:"help_request_id"`
}

// CreateReplyRequest payload.
type CreateReplyRequest struct {
	Message string `json:"message"`
}

// TicketSummary is a listing row.
type TicketSummary struct {
	ID            string              `json:"id"`
	Subject       string              `json:"subject"`
	Status        domain.TicketStatus `json:"status"`
	OwnerName     string              `json:"owner_name"`
	HelpRequestID *string             `json:"help_request_id,omitempty"`
	ReplyCount    int                 `json:"reply_count"`
	CreatedAt     time.Time           `json:"created_at"`
}

// TicketDetailResponse provides full ticket info with its thread.
type TicketDetailResponse struct {
	ID            string              `json:"id"`
	OwnerID       string              `json:"owner_id"`
	OwnerName     string              `json:"owner_name"`
	Subject       string              `json:"subject"`
	Description   string              `json:"description"`
	HelpRequestID *string             `json:"help_request_id,omitempty"`
	Status        domain.TicketStatus `json:"status"`
	CreatedAt     time.Time           `json:"created_at"`
	Replies       []ReplyResponse     `json:"replies"`
}

// ReplyResponse represents a thread entry.
type ReplyResponse struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

// TicketStatusResponse reports the outcome of close/reopen actions.
type TicketStatusResponse struct {
	ID      string              `json:"id"`
	Status  domain.TicketStatus `json:"status"`
	Changed bool                `json:"changed"`
	Notice  string              `json:"notice,omitempty"`
}
