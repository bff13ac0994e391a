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

func grantParams(r *http.Request) (adminID, permissionID int64, err error) {
	adminID, err = strconv.ParseInt(chi.URLParam(r, "adminID"), 10, 64)
	if err != nil {
		return 0, 0, errors.New("invalid admin ID")
	}
	permissionID, err = strconv.ParseInt(chi.URLParam(r, "permissionID"), 10, 64)
	if err != nil {
		return 0, 0, errors.New("invalid permission ID")
	}
	return adminID, permissionID, nil
}

// ListPermissions godoc
//
//	@Summary		List all permissions
//	@Description	Returns the permission catalog ordered by resource and action
//	@Tags			Permissions
//	@Produce		json
//	@Success		200	{object}	map[string]interface{}	"Permissions"
//	@Failure		403	{object}	error					"Forbidden"
//	@Security		ApiKeyAuth
//	@Router			/admin/permissions [get]
func (app *application) listPermissionsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	permissions, err := app.grants.ListPermissions(ctx)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]interface{}{"permissions": permissions})
}

// AdminGrants godoc
//
//	@Summary		List an admin's grants
//	@Description	Returns the permissions currently granted to the given admin
//	@Tags			Permissions
//	@Produce		json
//	@Param			adminID	path		int						true	"Admin user ID"
//	@Success		200		{object}	map[string]interface{}	"Granted permissions"
//	@Failure		403		{object}	error					"Forbidden"
//	@Failure		404		{object}	error					"Not Found"
//	@Security		ApiKeyAuth
//	@Router			/admin/permissions/admins/{adminID} [get]
func (app *application) adminGrantsHandler(w http.ResponseWriter, r *http.Request) {
	adminID, err := strconv.ParseInt(chi.URLParam(r, "adminID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid admin ID"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	permissions, err := app.grants.GrantsFor(ctx, adminID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]interface{}{"permissions": permissions})
}

// AssignPermission godoc
//
//	@Summary		Grant a permission to an admin
//	@Description	Idempotent; granting an already-held permission returns 200 instead of 201
//	@Tags			Permissions
//	@Produce		json
//	@Param			adminID			path		int						true	"Admin user ID"
//	@Param			permissionID	path		int						true	"Permission ID"
//	@Success		200				{object}	map[string]interface{}	"Grant already existed"
//	@Success		201				{object}	map[string]interface{}	"Grant created"
//	@Failure		403				{object}	error					"Forbidden"
//	@Failure		404				{object}	error					"Admin or permission not found"
//	@Security		ApiKeyAuth
//	@Router			/admin/permissions/admins/{adminID}/{permissionID} [put]
func (app *application) assignPermissionHandler(w http.ResponseWriter, r *http.Request) {
	adminID, permissionID, err := grantParams(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	grant, created, err := app.grants.Assign(ctx, getSubjectFromContext(r), adminID, permissionID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.authorizationErrorResponse(w, r, err)
		}
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	app.jsonResponse(w, status, grant)
}

// RevokePermission godoc
//
//	@Summary		Revoke a permission from an admin
//	@Description	Removes the grant; revoking an absent grant still succeeds
//	@Tags			Permissions
//	@Produce		json
//	@Param			adminID			path	int	true	"Admin user ID"
//	@Param			permissionID	path	int	true	"Permission ID"
//	@Success		204				"No Content"
//	@Failure		403				{object}	error	"Forbidden"
//	@Security		ApiKeyAuth
//	@Router			/admin/permissions/admins/{adminID}/{permissionID} [delete]
func (app *application) revokePermissionHandler(w http.ResponseWriter, r *http.Request) {
	adminID, permissionID, err := grantParams(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := app.grants.Revoke(ctx, getSubjectFromContext(r), adminID, permissionID); err != nil {
		app.authorizationErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
