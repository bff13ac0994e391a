package authz

import (
	"context"
	"fmt"
	"sort"

	"bazaar/internal/store"
)

// Permission names understood by the operation table. Kept in code so a
// requirement can be declared without a catalog lookup; the catalog rows in
// the permissions table mirror these names.
const (
	PermAdsApprove = "ads.approve"
	PermAdsReject  = "ads.reject"
	PermAdsEdit    = "ads.edit"
	PermAdsDelete  = "ads.delete"
	PermAuditView  = "audit.view"
	PermUsersView  = "users.view"
)

// GrantSource is the slice of the permission store the authorizer needs.
type GrantSource interface {
	GrantsFor(ctx context.Context, adminID int64) ([]store.Permission, error)
}

// PermissionAuthorizer evaluates fine-grained permission requirements with
// AND semantics: the subject must hold every required permission.
type PermissionAuthorizer struct {
	grants GrantSource
}

func NewPermissionAuthorizer(grants GrantSource) *PermissionAuthorizer {
	return &PermissionAuthorizer{grants: grants}
}

// Authorize returns nil when the subject may proceed. SUPER_ADMIN bypasses
// every check without touching the store; an ADMIN must hold all required
// grants; any other role is denied outright for non-empty requirements.
func (a *PermissionAuthorizer) Authorize(ctx context.Context, subject *Subject, required ...string) error {
	if len(required) == 0 {
		return nil
	}
	if subject == nil {
		return ErrInsufficientRole
	}
	if subject.Role == RoleSuperAdmin {
		return nil
	}
	if subject.Role != RoleAdmin {
		return ErrRoleNotEligible
	}

	perms, err := a.grants.GrantsFor(ctx, subject.ID)
	if err != nil {
		return fmt.Errorf("fetching grants for admin %d: %w", subject.ID, err)
	}

	held := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		held[p.Name] = struct{}{}
	}

	var missing []string
	for _, name := range required {
		if _, ok := held[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &InsufficientPermissionError{Missing: missing}
	}
	return nil
}
