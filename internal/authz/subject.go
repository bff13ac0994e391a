package authz

import "time"

type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Subject is the resolved identity of a caller, rebuilt per request from the
// stored user row. A nil *Subject means the caller is anonymous (or was
// collapsed to anonymous by the identity resolver).
type Subject struct {
	ID             int64
	Role           Role
	Blocked        bool
	SuspendedUntil *time.Time
}

// IsAdmin reports whether the subject holds an administrative role.
func (s *Subject) IsAdmin() bool {
	return s != nil && (s.Role == RoleAdmin || s.Role == RoleSuperAdmin)
}

// IsSuperAdmin reports whether the subject bypasses all role and permission
// checks. The bypass is a rule evaluated here, never a stored grant.
func (s *Subject) IsSuperAdmin() bool {
	return s != nil && s.Role == RoleSuperAdmin
}
