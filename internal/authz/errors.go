package authz

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInsufficientRole = errors.New("authz: insufficient role")
	// ErrRoleNotEligible denies permission checks for roles that can never
	// hold grants (a plain USER is not an administrator).
	ErrRoleNotEligible = errors.New("authz: role not eligible for permissions")
)

// InsufficientPermissionError names the permissions the subject is missing.
type InsufficientPermissionError struct {
	Missing []string
}

func (e *InsufficientPermissionError) Error() string {
	return fmt.Sprintf("authz: missing permissions: %s", strings.Join(e.Missing, ", "))
}
