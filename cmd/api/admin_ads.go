package main

import (
	"context"
	"errors"
	"net/http"
	"time"
)

type rejectAdPayload struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

// PendingAds godoc
//
//	@Summary		List the moderation queue
//	@Description	Returns ads awaiting approval, oldest first
//	@Tags			Moderation
//	@Produce		json
//	@Param			limit	query		int						false	"Limit results"
//	@Param			offset	query		int						false	"Offset results"
//	@Success		200		{object}	map[string]interface{}	"Pending ads"
//	@Failure		403		{object}	error					"Forbidden"
//	@Security		ApiKeyAuth
//	@Router			/admin/ads/pending [get]
func (app *application) pendingAdsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	limit, offset, err := paginationParams(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ads, total, err := app.store.Ads.ListPending(ctx, limit, offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	response := map[string]interface{}{
		"ads":    ads,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	}

	app.jsonResponse(w, http.StatusOK, response)
}

// ApproveAd godoc
//
//	@Summary		Approve an ad
//	@Description	Publishes the ad; the first approval timestamp is kept on re-approval
//	@Tags			Moderation
//	@Produce		json
//	@Param			adID	path		int						true	"Ad ID"
//	@Success		200		{object}	map[string]interface{}	"Approved ad"
//	@Failure		403		{object}	error					"Forbidden"
//	@Failure		404		{object}	error					"Not Found"
//	@Failure		409		{object}	error					"Already approved"
//	@Security		ApiKeyAuth
//	@Router			/admin/ads/{adID}/approve [put]
func (app *application) approveAdHandler(w http.ResponseWriter, r *http.Request) {
	id, err := adIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid ad ID"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	ad, err := app.lifecycle.Approve(ctx, getSubjectFromContext(r), id)
	if err != nil {
		app.lifecycleErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, ad)
}

// RejectAd godoc
//
//	@Summary		Reject an ad
//	@Description	Rejects the ad with a mandatory reason and notifies the owner
//	@Tags			Moderation
//	@Accept			json
//	@Produce		json
//	@Param			adID	path		int						true	"Ad ID"
//	@Param			payload	body		rejectAdPayload			true	"Rejection reason"
//	@Success		200		{object}	map[string]interface{}	"Rejected ad"
//	@Failure		400		{object}	error					"Reason missing"
//	@Failure		403		{object}	error					"Forbidden"
//	@Failure		404		{object}	error					"Not Found"
//	@Failure		409		{object}	error					"Already rejected"
//	@Security		ApiKeyAuth
//	@Router			/admin/ads/{adID}/reject [put]
func (app *application) rejectAdHandler(w http.ResponseWriter, r *http.Request) {
	id, err := adIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid ad ID"))
		return
	}

	var payload rejectAdPayload
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

	ad, err := app.lifecycle.Reject(ctx, getSubjectFromContext(r), id, payload.Reason)
	if err != nil {
		app.lifecycleErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, ad)
}

// SuspendAd godoc
//
//	@Summary		Suspend an ad
//	@Description	Pulls the ad from public view pending review
//	@Tags			Moderation
//	@Produce		json
//	@Param			adID	path		int						true	"Ad ID"
//	@Success		200		{object}	map[string]interface{}	"Suspended ad"
//	@Failure		403		{object}	error					"Forbidden"
//	@Failure		404		{object}	error					"Not Found"
//	@Failure		409		{object}	error					"Already suspended"
//	@Security		ApiKeyAuth
//	@Router			/admin/ads/{adID}/suspend [put]
func (app *application) suspendAdHandler(w http.ResponseWriter, r *http.Request) {
	id, err := adIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid ad ID"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	ad, err := app.lifecycle.Suspend(ctx, getSubjectFromContext(r), id)
	if err != nil {
		app.lifecycleErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, ad)
}

// UnsuspendAd godoc
//
//	@Summary		Lift an ad suspension
//	@Description	Restores the ad to APPROVED if it was ever approved, else back to the queue
//	@Tags			Moderation
//	@Produce		json
//	@Param			adID	path		int						true	"Ad ID"
//	@Success		200		{object}	map[string]interface{}	"Restored ad"
//	@Failure		403		{object}	error					"Forbidden"
//	@Failure		404		{object}	error					"Not Found"
//	@Failure		409		{object}	error					"Not suspended"
//	@Security		ApiKeyAuth
//	@Router			/admin/ads/{adID}/unsuspend [put]
func (app *application) unsuspendAdHandler(w http.ResponseWriter, r *http.Request) {
	id, err := adIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid ad ID"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	ad, err := app.lifecycle.Unsuspend(ctx, getSubjectFromContext(r), id)
	if err != nil {
		app.lifecycleErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, ad)
}
