package auth

import (
	"context"
	"testing"
	"time"

	"bazaar/internal/authz"
	"bazaar/internal/store"
)

type stubUsers struct {
	users map[int64]*store.User
}

func (s *stubUsers) GetByID(_ context.Context, id int64) (*store.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func newTestAuthenticator() *JWTAuthenticator {
	return NewJWTAuthenticator("access-secret", "refresh-secret", "bazaar", "bazaar", time.Hour, 24*time.Hour)
}

func TestResolveOptional(t *testing.T) {
	ctx := context.Background()
	authenticator := newTestAuthenticator()

	future := time.Now().Add(48 * time.Hour)
	past := time.Now().Add(-48 * time.Hour)

	users := &stubUsers{users: map[int64]*store.User{
		1: {ID: 1, Role: store.RoleUser},
		2: {ID: 2, Role: store.RoleAdmin},
		3: {ID: 3, Role: store.RoleUser, Blocked: true},
		4: {ID: 4, Role: store.RoleUser, SuspendedUntil: &future},
		5: {ID: 5, Role: store.RoleUser, SuspendedUntil: &past},
	}}
	resolver := NewIdentityResolver(authenticator, users)

	tokenFor := func(t *testing.T, userID int64, role string) string {
		t.Helper()
		access, _, err := authenticator.GenerateTokens(userID, role)
		if err != nil {
			t.Fatalf("GenerateTokens: %v", err)
		}
		return access
	}

	t.Run("empty token resolves to anonymous", func(t *testing.T) {
		if got := resolver.ResolveOptional(ctx, ""); got != nil {
			t.Errorf("subject = %+v, want nil", got)
		}
	})

	t.Run("malformed token resolves to anonymous", func(t *testing.T) {
		if got := resolver.ResolveOptional(ctx, "not.a.jwt"); got != nil {
			t.Errorf("subject = %+v, want nil", got)
		}
	})

	t.Run("token signed with wrong secret is anonymous", func(t *testing.T) {
		other := NewJWTAuthenticator("other-secret", "other-refresh", "bazaar", "bazaar", time.Hour, 24*time.Hour)
		access, _, err := other.GenerateTokens(1, store.RoleUser)
		if err != nil {
			t.Fatalf("GenerateTokens: %v", err)
		}
		if got := resolver.ResolveOptional(ctx, access); got != nil {
			t.Errorf("subject = %+v, want nil", got)
		}
	})

	t.Run("expired token is anonymous", func(t *testing.T) {
		expired := NewJWTAuthenticator("access-secret", "refresh-secret", "bazaar", "bazaar", -time.Minute, 24*time.Hour)
		access, _, err := expired.GenerateTokens(1, store.RoleUser)
		if err != nil {
			t.Fatalf("GenerateTokens: %v", err)
		}
		if got := resolver.ResolveOptional(ctx, access); got != nil {
			t.Errorf("subject = %+v, want nil", got)
		}
	})

	t.Run("unknown account is anonymous", func(t *testing.T) {
		if got := resolver.ResolveOptional(ctx, tokenFor(t, 999, store.RoleUser)); got != nil {
			t.Errorf("subject = %+v, want nil", got)
		}
	})

	t.Run("blocked account is anonymous", func(t *testing.T) {
		if got := resolver.ResolveOptional(ctx, tokenFor(t, 3, store.RoleUser)); got != nil {
			t.Errorf("subject = %+v, want nil", got)
		}
	})

	t.Run("account suspended into the future is anonymous", func(t *testing.T) {
		if got := resolver.ResolveOptional(ctx, tokenFor(t, 4, store.RoleUser)); got != nil {
			t.Errorf("subject = %+v, want nil", got)
		}
	})

	t.Run("expired suspension resolves normally", func(t *testing.T) {
		got := resolver.ResolveOptional(ctx, tokenFor(t, 5, store.RoleUser))
		if got == nil {
			t.Fatal("subject = nil, want resolved")
		}
		if got.ID != 5 || got.Role != authz.RoleUser {
			t.Errorf("subject = %+v", got)
		}
	})

	t.Run("valid user resolves with role from store", func(t *testing.T) {
		got := resolver.ResolveOptional(ctx, tokenFor(t, 2, store.RoleAdmin))
		if got == nil {
			t.Fatal("subject = nil, want resolved")
		}
		if got.ID != 2 || got.Role != authz.RoleAdmin {
			t.Errorf("subject = %+v, want ID 2 role ADMIN", got)
		}
	})
}
