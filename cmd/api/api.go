package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bazaar/docs" //this is required to generate swagger docs
	"bazaar/internal/auth"
	"bazaar/internal/authz"
	"bazaar/internal/mailer"
	"bazaar/internal/moderation"
	"bazaar/internal/ratelimiter"
	"bazaar/internal/refcode"
	"bazaar/internal/store"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         store.Storage
	logger        *zap.SugaredLogger
	cld           *cloudinary.Cloudinary
	mailer        mailer.Client
	authenticator auth.Authenticator
	identity      *auth.IdentityResolver
	authorizer    *authz.PermissionAuthorizer
	grants        *authz.GrantManager
	lifecycle     *moderation.Service
	refcodes      *refcode.Generator
	rateLimiter   ratelimiter.Limiter
}

type config struct {
	addr        string
	db          dbConfig
	env         string
	apiURL      string
	mail        mailConfig
	frontendURL string
	auth        authConfig
	rateLimiter ratelimiter.Config
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}
type tokenConfig struct {
	refreshSecret   string
	secret          string
	accessTokenExp  time.Duration
	refreshTokenExp time.Duration
	iss             string
}
type basicConfig struct {
	user string
	pass string
}

type mailConfig struct {
	fromEmail string
	smtp      smtpConfig
}

type smtpConfig struct {
	host     string
	port     int
	username string
	password string
}

type dbConfig struct {
	addr        string
	maxConns    int32
	maxIdleTime string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.RateLimiterMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	// Stop processing once the request context signals a timeout
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		// Public routes
		r.Route("/authentication", func(r chi.Router) {
			r.Post("/user", app.registerUserHandler)
			r.Post("/token", app.createTokenHandler)
			r.Post("/refresh", app.refreshTokenHandler)
		})

		r.Get("/categories", app.listCategoriesHandler)
		r.Get("/cities", app.listCitiesHandler)

		// Public but privilege-aware: anonymous callers see only APPROVED
		// ads; owners and admins see everything.
		r.Route("/ads", func(r chi.Router) {
			r.Use(app.OptionalAuthMiddleware)

			r.Get("/", app.listAdsHandler)
			r.With(app.AuthTokenMiddleware, app.RequireOperation("ads.create")).Post("/", app.createAdHandler)

			r.Route("/{adID}", func(r chi.Router) {
				r.Get("/", app.getAdHandler)
				r.With(app.AuthTokenMiddleware, app.RequireOperation("ads.update")).Patch("/", app.updateAdHandler)
				r.With(app.AuthTokenMiddleware, app.RequireOperation("ads.delete")).Delete("/", app.deleteAdHandler)

				r.With(app.AuthTokenMiddleware).Post("/photos", app.uploadAdPhotoHandler)
				r.With(app.AuthTokenMiddleware).Delete("/photos", app.deleteAdPhotoHandler)

				r.With(app.AuthTokenMiddleware).Post("/messages", app.createMessageHandler)
				r.With(app.AuthTokenMiddleware).Get("/messages", app.getAdMessagesHandler)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/ads", app.listMyAdsHandler)
			r.Get("/messages", app.inboxHandler)
			r.Post("/push-token", app.registerPushTokenHandler)
			r.Post("/logout", app.logoutHandler)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)

			r.Route("/ads", func(r chi.Router) {
				r.With(app.RequireOperation("ads.pending")).Get("/pending", app.pendingAdsHandler)
				r.With(app.RequireOperation("ads.approve")).Put("/{adID}/approve", app.approveAdHandler)
				r.With(app.RequireOperation("ads.reject")).Put("/{adID}/reject", app.rejectAdHandler)
				r.With(app.RequireOperation("ads.suspend")).Put("/{adID}/suspend", app.suspendAdHandler)
				r.With(app.RequireOperation("ads.unsuspend")).Put("/{adID}/unsuspend", app.unsuspendAdHandler)
			})

			r.Route("/permissions", func(r chi.Router) {
				r.With(app.RequireOperation("admin.permissions.list")).Get("/", app.listPermissionsHandler)
				r.With(app.RequireOperation("admin.permissions.grants")).Get("/admins/{adminID}", app.adminGrantsHandler)
				r.With(app.RequireOperation("admin.permissions.assign")).Put("/admins/{adminID}/{permissionID}", app.assignPermissionHandler)
				r.With(app.RequireOperation("admin.permissions.revoke")).Delete("/admins/{adminID}/{permissionID}", app.revokePermissionHandler)
			})

			r.With(app.RequireOperation("admin.audit.list")).Get("/audit", app.listAuditHandler)

			r.Route("/categories", func(r chi.Router) {
				r.Use(app.RequireOperation("categories.write"))
				r.Post("/", app.createCategoryHandler)
				r.Put("/{categoryID}", app.updateCategoryHandler)
				r.Delete("/{categoryID}", app.deleteCategoryHandler)
			})

			r.Route("/cities", func(r chi.Router) {
				r.Use(app.RequireOperation("cities.write"))
				r.Post("/", app.createCityHandler)
				r.Delete("/{cityID}", app.deleteCityHandler)
			})
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Implementing graceful shutdown
	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
