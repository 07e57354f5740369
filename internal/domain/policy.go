package domain

// Principal is the authenticated identity and role pair supplied to every
// lifecycle operation. It is resolved once per request by the auth boundary;
// services never read ambient session state.
type Principal struct {
	AccountID   string
	Role        Role
	DisplayName string
}

// IsStaff reports whether the role carries staff authority.
func (r Role) IsStaff() bool {
	return r == RoleSupport || r == RoleAdmin
}

// IsAdmin reports whether the role is the administrator role.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// IsOwnerOrStaff reports whether the principal owns the resource or is staff.
func IsOwnerOrStaff(p Principal, ownerID string) bool {
	return p.AccountID == ownerID || p.Role.IsStaff()
}
