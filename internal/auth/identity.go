package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"bazaar/internal/authz"
	"bazaar/internal/store"

	"github.com/golang-jwt/jwt/v5"
)

// SubjectSource loads the stored account backing a token subject.
type SubjectSource interface {
	GetByID(ctx context.Context, id int64) (*store.User, error)
}

// IdentityResolver turns a bearer credential into a Subject for routes that
// are public to anonymous callers but privilege-aware for authenticated ones.
type IdentityResolver struct {
	authenticator Authenticator
	users         SubjectSource
	now           func() time.Time
}

func NewIdentityResolver(authenticator Authenticator, users SubjectSource) *IdentityResolver {
	return &IdentityResolver{authenticator: authenticator, users: users, now: time.Now}
}

// ResolveOptional resolves the caller's subject, or nil. A missing, malformed
// or expired credential is a normal anonymous case, never an error. A blocked
// account, or one suspended into the future, also resolves to nil: a
// sanctioned caller is indistinguishable from an anonymous one downstream.
func (r *IdentityResolver) ResolveOptional(ctx context.Context, rawToken string) *authz.Subject {
	if rawToken == "" {
		return nil
	}

	jwtToken, err := r.authenticator.ValidateAccessToken(rawToken)
	if err != nil {
		return nil
	}

	claims, ok := jwtToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	userID, err := strconv.ParseInt(fmt.Sprintf("%.f", claims["sub"]), 10, 64)
	if err != nil {
		return nil
	}

	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return nil
	}
	if user.Blocked {
		return nil
	}
	if user.SuspendedUntil != nil && user.SuspendedUntil.After(r.now()) {
		return nil
	}

	return &authz.Subject{
		ID:             user.ID,
		Role:           authz.Role(user.Role),
		Blocked:        user.Blocked,
		SuspendedUntil: user.SuspendedUntil,
	}
}
