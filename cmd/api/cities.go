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

type cityPayload struct {
	Name   string  `json:"name" validate:"required,max=100"`
	Region *string `json:"region" validate:"omitempty,max=100"`
}

// ListCities godoc
//
//	@Summary		List cities
//	@Tags			Catalog
//	@Produce		json
//	@Success		200	{object}	map[string]interface{}	"Cities"
//	@Router			/cities [get]
func (app *application) listCitiesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cities, err := app.store.Cities.List(ctx)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]interface{}{"cities": cities})
}

// CreateCity godoc
//
//	@Summary		Create a city
//	@Tags			Catalog
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		cityPayload				true	"City"
//	@Success		201		{object}	map[string]interface{}	"Created city"
//	@Failure		403		{object}	error					"Forbidden"
//	@Security		ApiKeyAuth
//	@Router			/admin/cities [post]
func (app *application) createCityHandler(w http.ResponseWriter, r *http.Request) {
	var payload cityPayload
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

	city := &store.City{
		Name:   payload.Name,
		Region: payload.Region,
	}

	if err := app.store.Cities.Create(ctx, city); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, city)
}

// DeleteCity godoc
//
//	@Summary		Delete a city
//	@Tags			Catalog
//	@Produce		json
//	@Param			cityID	path	int	true	"City ID"
//	@Success		204		"No Content"
//	@Failure		403		{object}	error	"Forbidden"
//	@Failure		404		{object}	error	"Not Found"
//	@Security		ApiKeyAuth
//	@Router			/admin/cities/{cityID} [delete]
func (app *application) deleteCityHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "cityID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid city ID"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := app.store.Cities.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
