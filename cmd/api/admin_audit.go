package main

import (
	"context"
	"net/http"
	"time"
)

// ListAudit godoc
//
//	@Summary		List audit entries
//	@Description	Returns the moderation and permission audit trail, newest first
//	@Tags			Audit
//	@Produce		json
//	@Param			limit	query		int						false	"Limit results"
//	@Param			offset	query		int						false	"Offset results"
//	@Success		200		{object}	map[string]interface{}	"Audit entries"
//	@Failure		403		{object}	error					"Forbidden"
//	@Security		ApiKeyAuth
//	@Router			/admin/audit [get]
func (app *application) listAuditHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	limit, offset, err := paginationParams(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	entries, total, err := app.store.Audit.List(ctx, limit, offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	response := map[string]interface{}{
		"entries": entries,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	}

	app.jsonResponse(w, http.StatusOK, response)
}
