package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"bazaar/internal/authz"
)

type subjectKey string

const subjectCtx subjectKey = "subject"

func (app *application) BasicAuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// read the auth header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("authorization header is missing"))
				return
			}

			// parse it -> get the base64
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Basic" {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("authorization header is malformed"))
				return
			}

			// decode it
			decoded, err := base64.StdEncoding.DecodeString(parts[1])
			if err != nil {
				app.unauthorizedBasicErrorResponse(w, r, err)
				return
			}

			// check the credentials
			username := app.config.auth.basic.user
			pass := app.config.auth.basic.pass

			creds := strings.SplitN(string(decoded), ":", 2)
			if len(creds) != 2 || creds[0] != username || creds[1] != pass {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("invalid credentials"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken pulls the raw token out of the Authorization header, or "".
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// OptionalAuthMiddleware resolves the caller's subject when a usable
// credential is present and proceeds anonymously otherwise. Blocked or
// suspended accounts also proceed anonymously; the resolver collapses them.
func (app *application) OptionalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject := app.identity.ResolveOptional(r.Context(), bearerToken(r))
		if subject != nil {
			ctx := context.WithValue(r.Context(), subjectCtx, subject)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// AuthTokenMiddleware is the strict variant: the whole request fails when no
// valid, unsanctioned subject can be resolved.
func (app *application) AuthTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if getSubjectFromContext(r) != nil {
			// already resolved by the optional middleware upstream
			next.ServeHTTP(w, r)
			return
		}

		token := bearerToken(r)
		if token == "" {
			app.unauthorizedErrorResponse(w, r, fmt.Errorf("authorization header is missing or malformed"))
			return
		}

		subject := app.identity.ResolveOptional(r.Context(), token)
		if subject == nil {
			app.unauthorizedErrorResponse(w, r, fmt.Errorf("invalid or expired credentials"))
			return
		}

		ctx := context.WithValue(r.Context(), subjectCtx, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireOperation gates a route on the static requirement table: roles
// first, then permissions, before the lifecycle layer is ever invoked.
func (app *application) RequireOperation(operation string) func(http.Handler) http.Handler {
	req, ok := authz.RequirementFor(operation)
	if !ok {
		panic(fmt.Sprintf("unknown operation %q in route table", operation))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := getSubjectFromContext(r)

			if err := authz.AuthorizeRole(subject, req.Roles...); err != nil {
				app.forbiddenResponse(w, r, err)
				return
			}

			if err := app.authorizer.Authorize(r.Context(), subject, req.Permissions...); err != nil {
				app.authorizationErrorResponse(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (app *application) RateLimiterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.config.rateLimiter.Enabled {
			if allow, retryAfter := app.rateLimiter.Allow(r.RemoteAddr); !allow {
				app.rateLimitExceededResponse(w, r, retryAfter.String())
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func getSubjectFromContext(r *http.Request) *authz.Subject {
	subject, _ := r.Context().Value(subjectCtx).(*authz.Subject)
	return subject
}
