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

type categoryPayload struct {
	Name string `json:"name" validate:"required,max=100"`
	Slug string `json:"slug" validate:"required,max=100,lowercase"`
}

// ListCategories godoc
//
//	@Summary		List categories
//	@Tags			Catalog
//	@Produce		json
//	@Success		200	{object}	map[string]interface{}	"Categories"
//	@Router			/categories [get]
func (app *application) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	categories, err := app.store.Categories.List(ctx)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

// CreateCategory godoc
//
//	@Summary		Create a category
//	@Tags			Catalog
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		categoryPayload			true	"Category"
//	@Success		201		{object}	map[string]interface{}	"Created category"
//	@Failure		403		{object}	error					"Forbidden"
//	@Failure		409		{object}	error					"Slug already exists"
//	@Security		ApiKeyAuth
//	@Router			/admin/categories [post]
func (app *application) createCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var payload categoryPayload
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

	category := &store.Category{
		Name: payload.Name,
		Slug: payload.Slug,
	}

	if err := app.store.Categories.Create(ctx, category); err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusCreated, category)
}

// UpdateCategory godoc
//
//	@Summary		Update a category
//	@Tags			Catalog
//	@Accept			json
//	@Produce		json
//	@Param			categoryID	path		int						true	"Category ID"
//	@Param			payload		body		categoryPayload			true	"Category"
//	@Success		200			{object}	map[string]interface{}	"Updated category"
//	@Failure		403			{object}	error					"Forbidden"
//	@Failure		404			{object}	error					"Not Found"
//	@Security		ApiKeyAuth
//	@Router			/admin/categories/{categoryID} [put]
func (app *application) updateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "categoryID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid category ID"))
		return
	}

	var payload categoryPayload
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

	category := &store.Category{
		ID:   id,
		Name: payload.Name,
		Slug: payload.Slug,
	}

	if err := app.store.Categories.Update(ctx, category); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusOK, category)
}

// DeleteCategory godoc
//
//	@Summary		Delete a category
//	@Tags			Catalog
//	@Produce		json
//	@Param			categoryID	path	int	true	"Category ID"
//	@Success		204			"No Content"
//	@Failure		403			{object}	error	"Forbidden"
//	@Failure		404			{object}	error	"Not Found"
//	@Security		ApiKeyAuth
//	@Router			/admin/categories/{categoryID} [delete]
func (app *application) deleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "categoryID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid category ID"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := app.store.Categories.Delete(ctx, id); err != nil {
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
