package main

import (
	"context"
	"net/http"
	"time"
)

type registerPushTokenPayload struct {
	Token string `json:"token" validate:"required,max=255"`
}

// RegisterPushToken godoc
//
//	@Summary		Register an Expo push token
//	@Description	Associates the device token with the caller; re-registering is a no-op
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		registerPushTokenPayload	true	"Expo push token"
//	@Success		204		"No Content"
//	@Failure		400		{object}	error	"Bad Request"
//	@Security		ApiKeyAuth
//	@Router			/users/push-token [post]
func (app *application) registerPushTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload registerPushTokenPayload
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

	subject := getSubjectFromContext(r)

	if err := app.store.PushTokens.Register(ctx, subject.ID, payload.Token); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
