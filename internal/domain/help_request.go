package domain

import "time"

// HelpRequestStatus enumerates lifecycle states for disaster-relief requests.
// Transitions are monotonic forward and never regress.
type HelpRequestStatus string

const (
	HelpRequestStatusPending    HelpRequestStatus = "PENDING"
	HelpRequestStatusInProgress HelpRequestStatus = "IN_PROGRESS"
	HelpRequestStatusResolved   HelpRequestStatus = "RESOLVED"
)

// HelpRequest is a citizen's disaster-relief request. Mutable only by its
// owner while status is PENDING.
type HelpRequest struct {
	ID              string
	OwnerID         string
	DisasterType    string
	DisasterDate    time.Time
	Location        string
	AffectedPersons *int
	Priority        string
	Description     string
	Status          HelpRequestStatus
	CreatedAt       time.Time
}

// HelpRequestListItem is a listing row with the owner's display name resolved.
type HelpRequestListItem struct {
	HelpRequest
	OwnerName string
}

// Next returns the following lifecycle state, or false when the status is
// terminal.
func (s HelpRequestStatus) Next() (HelpRequestStatus, bool) {
	switch s {
	case HelpRequestStatusPending:
		return HelpRequestStatusInProgress, true
	case HelpRequestStatusInProgress:
		return HelpRequestStatusResolved, true
	default:
		return s, false
	}
}
