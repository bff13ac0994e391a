package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"bazaar/internal/store"

	"github.com/go-chi/chi/v5"
)

type createAdPayload struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	CategoryID  int64    `json:"category_id" validate:"required,gt=0"`
	CityID      int64    `json:"city_id" validate:"required,gt=0"`
}

type updateAdPayload struct {
	Title       *string  `json:"title" validate:"omitempty,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	CategoryID  *int64   `json:"category_id" validate:"omitempty,gt=0"`
	CityID      *int64   `json:"city_id" validate:"omitempty,gt=0"`
}

func adIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "adID"), 10, 64)
}

func paginationParams(r *http.Request) (limit, offset int, err error) {
	limit = 20
	offset = 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, perr := strconv.Atoi(limitStr)
		if perr != nil || parsed <= 0 {
			return 0, 0, errors.New("invalid limit parameter")
		}
		if parsed > 100 {
			parsed = 100
		}
		limit = parsed
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		parsed, perr := strconv.Atoi(offsetStr)
		if perr != nil || parsed < 0 {
			return 0, 0, errors.New("invalid offset parameter")
		}
		offset = parsed
	}

	return limit, offset, nil
}

// ListAds godoc
//
//	@Summary		List approved ads
//	@Description	Returns approved, non-deleted ads, filterable by category and city
//	@Tags			Ads
//	@Produce		json
//	@Param			category_id	query		int	false	"Filter by category"
//	@Param			city_id		query		int	false	"Filter by city"
//	@Param			limit		query		int	false	"Limit results (default: 20, max: 100)"
//	@Param			offset		query		int	false	"Offset results (default: 0)"
//	@Success		200			{object}	map[string]interface{}	"Ads"
//	@Failure		500			{object}	error					"Internal Server Error"
//	@Router			/ads [get]
func (app *application) listAdsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	limit, offset, err := paginationParams(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	approved := store.AdStatusApproved
	filter := store.AdFilter{
		Status: &approved,
		Limit:  limit,
		Offset: offset,
	}

	if categoryStr := r.URL.Query().Get("category_id"); categoryStr != "" {
		categoryID, perr := strconv.ParseInt(categoryStr, 10, 64)
		if perr != nil {
			app.badRequestResponse(w, r, errors.New("invalid category_id parameter"))
			return
		}
		filter.CategoryID = &categoryID
	}
	if cityStr := r.URL.Query().Get("city_id"); cityStr != "" {
		cityID, perr := strconv.ParseInt(cityStr, 10, 64)
		if perr != nil {
			app.badRequestResponse(w, r, errors.New("invalid city_id parameter"))
			return
		}
		filter.CityID = &cityID
	}

	ads, total, err := app.store.Ads.List(ctx, filter)
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

// GetAd godoc
//
//	@Summary		Get a single ad
//	@Description	Non-approved ads are visible only to their owner and admins
//	@Tags			Ads
//	@Produce		json
//	@Param			adID	path		int						true	"Ad ID"
//	@Success		200		{object}	map[string]interface{}	"Ad"
//	@Failure		404		{object}	error					"Not Found"
//	@Router			/ads/{adID} [get]
func (app *application) getAdHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, err := adIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid ad ID"))
		return
	}

	ad, err := app.lifecycle.View(ctx, getSubjectFromContext(r), id, true)
	if err != nil {
		app.lifecycleErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, ad)
}

// CreateAd godoc
//
//	@Summary		Create an ad
//	@Description	Submits a new ad; it enters the moderation queue as PENDING_APPROVAL
//	@Tags			Ads
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		createAdPayload			true	"Ad payload"
//	@Success		201		{object}	map[string]interface{}	"Created ad"
//	@Failure		400		{object}	error					"Bad Request"
//	@Security		ApiKeyAuth
//	@Router			/ads [post]
func (app *application) createAdHandler(w http.ResponseWriter, r *http.Request) {
	var payload createAdPayload
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

	refCode, err := app.refcodes.Generate(subject.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	ad := &store.Ad{
		RefCode:     refCode,
		CategoryID:  payload.CategoryID,
		CityID:      payload.CityID,
		Title:       payload.Title,
		Description: payload.Description,
		Price:       payload.Price,
	}

	if err := app.lifecycle.Create(ctx, subject, ad); err != nil {
		app.lifecycleErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, ad)
}

// UpdateAd godoc
//
//	@Summary		Update an ad
//	@Description	Owner edits of approved or rejected ads re-enter the moderation queue
//	@Tags			Ads
//	@Accept			json
//	@Produce		json
//	@Param			adID	path		int						true	"Ad ID"
//	@Param			payload	body		updateAdPayload			true	"Fields to update"
//	@Success		200		{object}	map[string]interface{}	"Updated ad"
//	@Failure		403		{object}	error					"Forbidden"
//	@Failure		404		{object}	error					"Not Found"
//	@Security		ApiKeyAuth
//	@Router			/ads/{adID} [patch]
func (app *application) updateAdHandler(w http.ResponseWriter, r *http.Request) {
	id, err := adIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid ad ID"))
		return
	}

	var payload updateAdPayload
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

	fields := store.AdUpdate{
		Title:       payload.Title,
		Description: payload.Description,
		Price:       payload.Price,
		CategoryID:  payload.CategoryID,
		CityID:      payload.CityID,
	}

	ad, err := app.lifecycle.Update(ctx, getSubjectFromContext(r), id, fields)
	if err != nil {
		app.lifecycleErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, ad)
}

// DeleteAd godoc
//
//	@Summary		Delete an ad
//	@Description	Soft-deletes the ad; owners always may, other admins need ads.delete
//	@Tags			Ads
//	@Produce		json
//	@Param			adID	path	int	true	"Ad ID"
//	@Success		204		"No Content"
//	@Failure		403		{object}	error	"Forbidden"
//	@Failure		404		{object}	error	"Not Found"
//	@Security		ApiKeyAuth
//	@Router			/ads/{adID} [delete]
func (app *application) deleteAdHandler(w http.ResponseWriter, r *http.Request) {
	id, err := adIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid ad ID"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := app.lifecycle.Delete(ctx, getSubjectFromContext(r), id); err != nil {
		app.lifecycleErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListMyAds godoc
//
//	@Summary		List the caller's ads
//	@Description	Returns the caller's own ads in every status
//	@Tags			Ads
//	@Produce		json
//	@Param			limit	query		int						false	"Limit results"
//	@Param			offset	query		int						false	"Offset results"
//	@Success		200		{object}	map[string]interface{}	"Ads"
//	@Security		ApiKeyAuth
//	@Router			/users/ads [get]
func (app *application) listMyAdsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	limit, offset, err := paginationParams(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	subject := getSubjectFromContext(r)

	filter := store.AdFilter{
		OwnerID: &subject.ID,
		Limit:   limit,
		Offset:  offset,
	}

	ads, total, err := app.store.Ads.List(ctx, filter)
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
