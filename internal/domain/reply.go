package domain

import "time"

// Reply is an immutable, append-only entry in a ticket thread.
type Reply struct {
	ID         string
	TicketID   string
	AuthorID   string
	AuthorName string
	Message    string
	CreatedAt  time.Time
}
