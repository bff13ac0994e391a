package main

import (
	"errors"
	"net/http"

	"bazaar/internal/authz"
	"bazaar/internal/moderation"
	"bazaar/internal/store"
)

func (app *application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("internal server error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusInternalServerError, "the server encountered a problem")
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("bad request", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusBadRequest, err.Error())
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("not found", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusNotFound, "not found")
}

func (app *application) conflictResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("conflict", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusConflict, err.Error())
}

func (app *application) forbiddenResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("forbidden", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusForbidden, "forbidden")
}

func (app *application) unauthorizedErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusUnauthorized, "unauthorized")
}

func (app *application) unauthorizedBasicErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized basic error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	w.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)

	writeJSONError(w, http.StatusUnauthorized, "unauthorized")
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, retryAfter string) {
	app.logger.Warnw("rate limit exceeded", "method", r.Method, "path", r.URL.Path)

	w.Header().Set("Retry-After", retryAfter)

	writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded, retry after: "+retryAfter)
}

// authorizationErrorResponse maps authorization-layer denials, keeping role
// denials and missing-permission denials distinguishable in logs while both
// surface as 403 to the caller.
func (app *application) authorizationErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var permErr *authz.InsufficientPermissionError
	switch {
	case errors.As(err, &permErr):
		app.logger.Warnw("insufficient permission", "method", r.Method, "path", r.URL.Path, "missing", permErr.Missing)
		writeJSONError(w, http.StatusForbidden, "insufficient permission")
	case errors.Is(err, authz.ErrRoleNotEligible), errors.Is(err, authz.ErrInsufficientRole):
		app.forbiddenResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}

// lifecycleErrorResponse translates the moderation error taxonomy onto HTTP
// statuses. Guard violations are conflicts: the caller may retry after
// inspecting current state.
func (app *application) lifecycleErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		app.notFoundResponse(w, r, err)
	case errors.Is(err, moderation.ErrForbidden):
		app.forbiddenResponse(w, r, err)
	case errors.Is(err, moderation.ErrReasonRequired):
		app.badRequestResponse(w, r, err)
	case errors.Is(err, moderation.ErrAlreadyApproved),
		errors.Is(err, moderation.ErrAlreadyRejected),
		errors.Is(err, moderation.ErrAlreadySuspended),
		errors.Is(err, moderation.ErrNotSuspended):
		app.conflictResponse(w, r, err)
	default:
		app.authorizationErrorResponse(w, r, err)
	}
}
