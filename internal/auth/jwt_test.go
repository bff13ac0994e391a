package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAccessAndRefreshSecretsAreIndependent(t *testing.T) {
	a := newTestAuthenticator()

	access, refresh, err := a.GenerateTokens(7, "USER")
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}

	if _, err := a.ValidateAccessToken(access); err != nil {
		t.Errorf("access token rejected: %v", err)
	}
	if _, err := a.ValidateRefreshToken(refresh); err != nil {
		t.Errorf("refresh token rejected: %v", err)
	}

	// Tokens must not be interchangeable between the two validators.
	if _, err := a.ValidateAccessToken(refresh); err == nil {
		t.Error("refresh token accepted as access token")
	}
	if _, err := a.ValidateRefreshToken(access); err == nil {
		t.Error("access token accepted as refresh token")
	}
}

func TestAccessTokenClaims(t *testing.T) {
	a := newTestAuthenticator()

	access, _, err := a.GenerateTokens(42, "ADMIN")
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}

	token, err := a.ValidateAccessToken(access)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims are not MapClaims")
	}
	if got := claims["role"]; got != "ADMIN" {
		t.Errorf("role claim = %v, want ADMIN", got)
	}
	if got := claims["iss"]; got != "bazaar" {
		t.Errorf("iss claim = %v, want bazaar", got)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	a := NewJWTAuthenticator("access-secret", "refresh-secret", "bazaar", "bazaar", -time.Minute, -time.Minute)

	access, refresh, err := a.GenerateTokens(7, "USER")
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}

	if _, err := a.ValidateAccessToken(access); err == nil {
		t.Error("expired access token accepted")
	}
	if _, err := a.ValidateRefreshToken(refresh); err == nil {
		t.Error("expired refresh token accepted")
	}
}
