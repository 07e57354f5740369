package domain

import "time"

// Role enumerates account roles. Staff roles grant cross-owner visibility
// and state-transition authority over tickets and help requests.
type Role string

const (
	RoleCitizen Role = "CITIZEN"
	RoleSupport Role = "SUPPORT"
	RoleAdmin   Role = "ADMIN"
)

// Account is the domain model for registered citizens and staff.
type Account struct {
	ID           string
	NationalID   string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Address      string
	Municipality string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// DisplayName is the human label shown next to owned records.
func (a *Account) DisplayName() string {
	return a.FirstName + " " + a.LastName
}
