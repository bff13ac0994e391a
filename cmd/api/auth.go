package main

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"bazaar/internal/mailer"
	"bazaar/internal/store"

	"github.com/golang-jwt/jwt/v5"
)

type registerUserPayload struct {
	FirstName string  `json:"first_name" validate:"required,max=100"`
	LastName  string  `json:"last_name" validate:"required,max=100"`
	Email     string  `json:"email" validate:"required,email,max=255"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
	Password  string  `json:"password" validate:"required,min=8,max=72"`
}

type createTokenPayload struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type refreshTokenPayload struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RegisterUser godoc
//
//	@Summary		Register a user
//	@Description	Creates a USER account and sends a welcome email
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		registerUserPayload		true	"User credentials"
//	@Success		201		{object}	map[string]interface{}	"User registered"
//	@Failure		400		{object}	error					"Bad Request"
//	@Failure		409		{object}	error					"Email already taken"
//	@Router			/authentication/user [post]
func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var payload registerUserPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := &store.User{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Role:      store.RoleUser,
	}

	if err := user.Password.Set(payload.Password); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := app.store.Users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateEmail):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	// Welcome mail is best effort; registration already succeeded.
	vars := struct {
		Username string
	}{
		Username: user.FirstName,
	}
	if _, err := app.mailer.Send(mailer.UserWelcomeTemplate, user.FirstName, user.Email, vars); err != nil {
		app.logger.Errorw("error sending welcome email", "error", err)
	}

	app.jsonResponse(w, http.StatusCreated, user)
}

// CreateToken godoc
//
//	@Summary		Log in
//	@Description	Exchanges email and password for an access/refresh token pair
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		createTokenPayload	true	"Credentials"
//	@Success		200		{object}	map[string]string	"Token pair"
//	@Failure		401		{object}	error				"Unauthorized"
//	@Router			/authentication/token [post]
func (app *application) createTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload createTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := app.store.Users.GetByEmail(ctx, payload.Email)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.unauthorizedErrorResponse(w, r, errors.New("invalid credentials"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := user.Password.Compare(payload.Password); err != nil {
		app.unauthorizedErrorResponse(w, r, errors.New("invalid credentials"))
		return
	}

	if user.Blocked {
		app.unauthorizedErrorResponse(w, r, errors.New("account is blocked"))
		return
	}

	accessToken, refreshToken, err := app.authenticator.GenerateTokens(user.ID, user.Role)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.SetRefreshToken(ctx, user.ID, hashToken(refreshToken)); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// RefreshToken godoc
//
//	@Summary		Refresh tokens
//	@Description	Rotates the refresh token and issues a new access token
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		refreshTokenPayload	true	"Refresh token"
//	@Success		200		{object}	map[string]string	"New token pair"
//	@Failure		401		{object}	error				"Unauthorized"
//	@Router			/authentication/refresh [post]
func (app *application) refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload refreshTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	token, err := app.authenticator.ValidateRefreshToken(payload.RefreshToken)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, errors.New("invalid refresh token"))
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		app.unauthorizedErrorResponse(w, r, errors.New("invalid refresh token"))
		return
	}

	userID, err := strconv.ParseInt(fmt.Sprintf("%.f", claims["sub"]), 10, 64)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, errors.New("invalid refresh token"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := app.store.Users.GetByID(ctx, userID)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, errors.New("invalid refresh token"))
		return
	}

	got, want := []byte(hashToken(payload.RefreshToken)), []byte(user.RefreshToken)
	if subtle.ConstantTimeCompare(got, want) != 1 {
		app.unauthorizedErrorResponse(w, r, errors.New("refresh token has been revoked"))
		return
	}

	if user.Blocked {
		app.unauthorizedErrorResponse(w, r, errors.New("account is blocked"))
		return
	}

	accessToken, newRefreshToken, err := app.authenticator.GenerateTokens(user.ID, user.Role)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.SetRefreshToken(ctx, user.ID, hashToken(newRefreshToken)); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{
		"access_token":  accessToken,
		"refresh_token": newRefreshToken,
	})
}

// Logout godoc
//
//	@Summary		Log out
//	@Description	Revokes the caller's refresh token
//	@Tags			Authentication
//	@Produce		json
//	@Success		204	"No Content"
//	@Security		ApiKeyAuth
//	@Router			/users/logout [post]
func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	subject := getSubjectFromContext(r)

	if err := app.store.Users.ClearRefreshToken(ctx, subject.ID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
