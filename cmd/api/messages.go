package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bazaar/internal/store"
)

type createMessagePayload struct {
	Body        string `json:"body" validate:"required,max=2000"`
	RecipientID *int64 `json:"recipient_id" validate:"omitempty,gt=0"`
}

// CreateMessage godoc
//
//	@Summary		Message an ad's owner
//	@Description	Sends a message about the ad; the owner replying must name a recipient
//	@Tags			Messages
//	@Accept			json
//	@Produce		json
//	@Param			adID	path		int						true	"Ad ID"
//	@Param			payload	body		createMessagePayload	true	"Message"
//	@Success		201		{object}	map[string]interface{}	"Created message"
//	@Failure		404		{object}	error					"Not Found"
//	@Security		ApiKeyAuth
//	@Router			/ads/{adID}/messages [post]
func (app *application) createMessageHandler(w http.ResponseWriter, r *http.Request) {
	adID, err := adIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid ad ID"))
		return
	}

	var payload createMessagePayload
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

	ad, err := app.lifecycle.View(ctx, subject, adID, false)
	if err != nil {
		app.lifecycleErrorResponse(w, r, err)
		return
	}

	recipientID := ad.OwnerID
	if subject.ID == ad.OwnerID {
		if payload.RecipientID == nil {
			app.badRequestResponse(w, r, errors.New("recipient_id is required when replying to your own ad"))
			return
		}
		recipientID = *payload.RecipientID
	}

	msg := &store.Message{
		AdID:        adID,
		SenderID:    subject.ID,
		RecipientID: recipientID,
		Body:        payload.Body,
	}

	if err := app.store.Messages.Create(ctx, msg); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, msg)
}

// AdMessages godoc
//
//	@Summary		List the caller's messages on an ad
//	@Tags			Messages
//	@Produce		json
//	@Param			adID	path		int						true	"Ad ID"
//	@Success		200		{object}	map[string]interface{}	"Messages"
//	@Failure		404		{object}	error					"Not Found"
//	@Security		ApiKeyAuth
//	@Router			/ads/{adID}/messages [get]
func (app *application) getAdMessagesHandler(w http.ResponseWriter, r *http.Request) {
	adID, err := adIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid ad ID"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	subject := getSubjectFromContext(r)

	messages, err := app.store.Messages.ListForAd(ctx, adID, subject.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

// Inbox godoc
//
//	@Summary		List the caller's inbox
//	@Description	Returns every message sent to or by the caller, newest first
//	@Tags			Messages
//	@Produce		json
//	@Param			limit	query		int						false	"Limit results"
//	@Param			offset	query		int						false	"Offset results"
//	@Success		200		{object}	map[string]interface{}	"Messages"
//	@Security		ApiKeyAuth
//	@Router			/users/messages [get]
func (app *application) inboxHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	limit, offset, err := paginationParams(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	subject := getSubjectFromContext(r)

	messages, total, err := app.store.Messages.ListForUser(ctx, subject.ID, limit, offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	response := map[string]interface{}{
		"messages": messages,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	}

	app.jsonResponse(w, http.StatusOK, response)
}
