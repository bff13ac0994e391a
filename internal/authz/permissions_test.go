package authz

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"bazaar/internal/store"
)

type stubGrants struct {
	grants map[int64][]store.Permission
	err    error
	calls  int
}

func (s *stubGrants) GrantsFor(_ context.Context, adminID int64) ([]store.Permission, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.grants[adminID], nil
}

func perms(names ...string) []store.Permission {
	out := make([]store.Permission, 0, len(names))
	for i, name := range names {
		out = append(out, store.Permission{ID: int64(i + 1), Name: name})
	}
	return out
}

func TestPermissionAuthorizer(t *testing.T) {
	ctx := context.Background()

	t.Run("empty requirement allows anyone", func(t *testing.T) {
		a := NewPermissionAuthorizer(&stubGrants{})
		if err := a.Authorize(ctx, nil); err != nil {
			t.Errorf("Authorize() = %v, want nil", err)
		}
	})

	t.Run("anonymous denied", func(t *testing.T) {
		a := NewPermissionAuthorizer(&stubGrants{})
		err := a.Authorize(ctx, nil, PermAdsApprove)
		if !errors.Is(err, ErrInsufficientRole) {
			t.Errorf("Authorize() = %v, want ErrInsufficientRole", err)
		}
	})

	t.Run("plain user not eligible", func(t *testing.T) {
		src := &stubGrants{}
		a := NewPermissionAuthorizer(src)
		err := a.Authorize(ctx, &Subject{ID: 1, Role: RoleUser}, PermAdsApprove)
		if !errors.Is(err, ErrRoleNotEligible) {
			t.Errorf("Authorize() = %v, want ErrRoleNotEligible", err)
		}
		if src.calls != 0 {
			t.Errorf("store hit %d times for an ineligible role", src.calls)
		}
	})

	t.Run("super admin bypasses store", func(t *testing.T) {
		src := &stubGrants{}
		a := NewPermissionAuthorizer(src)
		if err := a.Authorize(ctx, &Subject{ID: 1, Role: RoleSuperAdmin}, PermAdsApprove, PermAuditView); err != nil {
			t.Errorf("Authorize() = %v, want nil", err)
		}
		if src.calls != 0 {
			t.Errorf("store hit %d times for a super admin", src.calls)
		}
	})

	t.Run("admin holding all grants allowed", func(t *testing.T) {
		src := &stubGrants{grants: map[int64][]store.Permission{
			2: perms(PermAdsApprove, PermAdsReject),
		}}
		a := NewPermissionAuthorizer(src)
		if err := a.Authorize(ctx, &Subject{ID: 2, Role: RoleAdmin}, PermAdsApprove, PermAdsReject); err != nil {
			t.Errorf("Authorize() = %v, want nil", err)
		}
	})

	t.Run("one missing grant fails the whole check", func(t *testing.T) {
		src := &stubGrants{grants: map[int64][]store.Permission{
			2: perms(PermAdsApprove),
		}}
		a := NewPermissionAuthorizer(src)
		err := a.Authorize(ctx, &Subject{ID: 2, Role: RoleAdmin}, PermAdsApprove, PermAdsDelete, PermAuditView)

		var permErr *InsufficientPermissionError
		if !errors.As(err, &permErr) {
			t.Fatalf("Authorize() = %v, want InsufficientPermissionError", err)
		}
		want := []string{PermAdsDelete, PermAuditView}
		if !reflect.DeepEqual(permErr.Missing, want) {
			t.Errorf("Missing = %v, want sorted %v", permErr.Missing, want)
		}
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		src := &stubGrants{err: errors.New("connection reset")}
		a := NewPermissionAuthorizer(src)
		err := a.Authorize(ctx, &Subject{ID: 2, Role: RoleAdmin}, PermAdsApprove)
		if err == nil || errors.As(err, new(*InsufficientPermissionError)) {
			t.Errorf("Authorize() = %v, want wrapped store error", err)
		}
	})
}
