package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const maxPhotoUploadBytes = 10 << 20 // 10 MB

type deletePhotoPayload struct {
	PhotoURL string `json:"photo_url" validate:"required,url"`
}

// UploadAdPhoto godoc
//
//	@Summary		Upload an ad photo
//	@Description	Accepts a multipart "photo" file, stores it on Cloudinary and attaches the URL
//	@Tags			Ads
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			adID	path		int					true	"Ad ID"
//	@Param			photo	formData	file				true	"Photo file"
//	@Success		201		{object}	map[string]string	"Photo URL"
//	@Failure		403		{object}	error				"Forbidden"
//	@Failure		404		{object}	error				"Not Found"
//	@Security		ApiKeyAuth
//	@Router			/ads/{adID}/photos [post]
func (app *application) uploadAdPhotoHandler(w http.ResponseWriter, r *http.Request) {
	adID, err := adIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid ad ID"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	subject := getSubjectFromContext(r)

	// Existence and visibility first; strangers get a not-found before any
	// upload work happens.
	if _, err := app.lifecycle.View(ctx, subject, adID, false); err != nil {
		app.lifecycleErrorResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxPhotoUploadBytes); err != nil {
		app.badRequestResponse(w, r, errors.New("unable to parse multipart form"))
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		app.badRequestResponse(w, r, errors.New("photo file is required"))
		return
	}
	defer file.Close()

	publicID := fmt.Sprintf("ad_%d_photo_%d", adID, time.Now().UnixNano())
	photoURL, err := app.uploadAdPhoto(ctx, file, publicID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.lifecycle.AttachPhoto(ctx, subject, adID, photoURL); err != nil {
		// Attachment denied or failed; drop the orphaned upload.
		if delErr := app.deletePhotoFromCloudinary(ctx, photoURL); delErr != nil {
			app.logger.Errorw("cloudinary cleanup failed", "url", photoURL, "error", delErr)
		}
		app.lifecycleErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, map[string]string{"photo_url": photoURL})
}

// DeleteAdPhoto godoc
//
//	@Summary		Remove an ad photo
//	@Description	Detaches the photo URL from the ad and deletes the Cloudinary asset
//	@Tags			Ads
//	@Accept			json
//	@Produce		json
//	@Param			adID	path	int					true	"Ad ID"
//	@Param			payload	body	deletePhotoPayload	true	"Photo URL"
//	@Success		204		"No Content"
//	@Failure		403		{object}	error	"Forbidden"
//	@Failure		404		{object}	error	"Not Found"
//	@Security		ApiKeyAuth
//	@Router			/ads/{adID}/photos [delete]
func (app *application) deleteAdPhotoHandler(w http.ResponseWriter, r *http.Request) {
	adID, err := adIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid ad ID"))
		return
	}

	var payload deletePhotoPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := app.lifecycle.DetachPhoto(ctx, getSubjectFromContext(r), adID, payload.PhotoURL); err != nil {
		app.lifecycleErrorResponse(w, r, err)
		return
	}

	// The asset is already detached; a failed remote delete only leaks storage.
	if err := app.deletePhotoFromCloudinary(ctx, payload.PhotoURL); err != nil {
		app.logger.Errorw("cloudinary delete failed", "url", payload.PhotoURL, "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}
