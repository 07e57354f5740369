package dto

import (
	"time"

	"github.com/spec-kit/relief-service/internal/domain"
)

// HelpRequestPayload is the create/update payload. Date and count arrive as
// strings and are parsed by the lifecycle service.
type HelpRequestPayload struct {
	DisasterType    string `json:"disaster_type"`
	DisasterDate    string `json:"disaster_date"`
	Location        string `json:"location"`
	AffectedPersons string `json:"affected_persons"`
	Priority        string `json:"priority"`
	Description     string `json:"description"`
}

// HelpRequestResponse is the detail view of a request.
type HelpRequestResponse struct {
	ID              string                   `json:"id"`
	OwnerID         string                   `json:"owner_id"`
	OwnerName       string                   `json:"owner_name,omitempty"`
	DisasterType    string                   `json:"disaster_type"`
	DisasterDate    string                   `json:"disaster_date"`
	Location        string                   `json:"location"`
	AffectedPersons *int                     `json:"affected_persons"`
	Priority        string                   `json:"priority"`
	Description     string                   `json:"description"`
	Status          domain.HelpRequestStatus `json:"status"`
	CreatedAt       time.Time                `json:"created_at"`
}
