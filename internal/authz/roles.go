package authz

// AuthorizeRole evaluates a static role requirement against the subject.
// An empty requirement allows anyone, including anonymous callers. A
// SUPER_ADMIN satisfies every requirement.
func AuthorizeRole(subject *Subject, required ...Role) error {
	if len(required) == 0 {
		return nil
	}
	if subject == nil {
		return ErrInsufficientRole
	}
	if subject.Role == RoleSuperAdmin {
		return nil
	}
	for _, role := range required {
		if subject.Role == role {
			return nil
		}
	}
	return ErrInsufficientRole
}
