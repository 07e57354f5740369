package domain

import "time"

// TicketStatus enumerates lifecycle states for support tickets. Unlike help
// requests the machine is cyclic: CLOSED tickets may reopen.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// Ticket is the aggregate for support conversations. It may reference the
// help request it originated from.
type Ticket struct {
	ID            string
	OwnerID       string
	Subject       string
	Description   string
	HelpRequestID *string
	Status        TicketStatus
	CreatedAt     time.Time
}

// TicketListItem is a listing row with owner name and reply count resolved.
type TicketListItem struct {
	Ticket
	OwnerName  string
	ReplyCount int
}
