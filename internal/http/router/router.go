// Package router arma el árbol de rutas HTTP.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	healthctrl "github.com/kjun-ai/authgate/internal/http/controllers/health"
	oauthctrl "github.com/kjun-ai/authgate/internal/http/controllers/oauth"
	usersctrl "github.com/kjun-ai/authgate/internal/http/controllers/users"
	httperrors "github.com/kjun-ai/authgate/internal/http/errors"
	mw "github.com/kjun-ai/authgate/internal/http/middlewares"
	"github.com/kjun-ai/authgate/internal/rate"
)

// Deps contiene todo lo que el router necesita. Controllers nil no se montan.
type Deps struct {
	OAuth  *oauthctrl.Controller
	Users  *usersctrl.Controller
	Health *healthctrl.HealthController

	Authenticator mw.Authenticator
	RateLimiter   rate.Limiter
	CORSOrigins   []string
	Metrics       http.Handler
}

// New devuelve el handler raíz.
//
//	GET  /                          banner
//	GET  /readyz                    dependencias
//	GET  /api/gateway/status        dependencias
//	GET  /metrics                   prometheus
//	GET  /oauth/providers
//	GET  /oauth/{provider}/login    {success, loginUrl}
//	POST /oauth/{provider}/login    {success, loginUrl}
//	GET  /oauth/{provider}/callback redirect al frontend
//	POST /oauth/{provider}          {code, state} -> sesión
//	POST /oauth/refresh             {userId, refreshToken}
//	POST /oauth/logout              {userId, accessToken?}
//	GET  /oauth/me                  bearer
//	GET  /api/users/oauth           ?provider&oauthId
//	POST /api/users/oauth
//	GET  /api/users/{id}
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithCORS(deps.CORSOrigins),
	)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	// Health y métricas: sin logging (muy frecuentes) ni rate limit
	if deps.Health != nil {
		r.Get("/", deps.Health.Root)
		r.Get("/readyz", deps.Health.Status)
		r.Get("/api/gateway/status", deps.Health.Status)
	}
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(
			mw.WithLogging(),
			mw.WithMetrics(),
			mw.WithRateLimit(mw.RateLimitConfig{Limiter: deps.RateLimiter, KeyFunc: mw.DefaultRateKey}),
		)

		if c := deps.OAuth; c != nil {
			r.Route("/oauth", func(r chi.Router) {
				r.Use(mw.WithNoStore())
				r.Get("/providers", c.Providers)
				r.Post("/refresh", c.Refresh)
				r.Post("/logout", c.Logout)
				if deps.Authenticator != nil {
					r.With(mw.RequireAuth(deps.Authenticator)).Get("/me", c.Me)
				}
				r.Get("/{provider}/login", c.LoginURL)
				r.Post("/{provider}/login", c.LoginURL)
				r.Get("/{provider}/callback", c.Callback)
				r.Post("/{provider}", c.CodeLogin)
			})
		}

		if c := deps.Users; c != nil {
			r.Route("/api/users", func(r chi.Router) {
				r.Get("/oauth", c.FindByOAuth)
				r.Post("/oauth", c.SaveOrUpdate)
				r.Get("/{id}", c.FindByID)
			})
		}
	})

	return r
}
