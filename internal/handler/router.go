// Package handler wires the SigV4 auth middleware into an HTTP router and
// exposes the two authenticated surfaces a deployment needs: a presigned
// URL issuer endpoint and a protected-resource proxy standing in for the
// excluded bucket/object storage layer.
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/harborlane/s3gate/internal/auth"
)

// RouterConfig wires every collaborator the router needs.
type RouterConfig struct {
	AuthMiddleware func(http.Handler) http.Handler
	PresignHandler *PresignHandler
	ProxyHandler   *ProxyHandler
	HealthChecker  HealthChecker
	Logger         zerolog.Logger
}

// HealthChecker reports whether the service is ready to take traffic.
type HealthChecker interface {
	Healthy() bool
}

// NewRouter builds the chi router: /healthz is unauthenticated, /presign and
// the catch-all protected route both run behind the SigV4 auth middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(cfg.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if cfg.HealthChecker != nil && !cfg.HealthChecker.Healthy() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(cfg.AuthMiddleware)
		r.Post("/presign", cfg.PresignHandler.ServeHTTP)
		r.Handle("/*", cfg.ProxyHandler)
	})

	return r
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Dur("elapsed", time.Since(start)).
				Msg("request handled")
		})
	}
}

// AuthContextFromRequest is a small convenience wrapper around
// auth.GetAuthContext for handlers in this package.
func AuthContextFromRequest(r *http.Request) (*auth.AuthContext, bool) {
	return auth.GetAuthContext(r.Context())
}
