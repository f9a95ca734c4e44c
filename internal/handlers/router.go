// Package handlers exposes the site over HTTP: the JSON API under /api, the
// server rendered public pages and the health probes.
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/voltline/site/internal/platform/httpx"
)

// RouteRegistrar registers a set of routes against the provided router.
type RouteRegistrar func(r chi.Router)

type routerConfig struct {
	apiPath     string
	middlewares []func(http.Handler) http.Handler
	health      *HealthHandlers
	proxyHops   int

	api     []RouteRegistrar
	pages   RouteRegistrar
	uploads http.Handler
}

// Option customises the router configuration before construction.
type Option func(*routerConfig)

const (
	defaultAPIPrefix  = "/api"
	defaultTimeout    = 60 * time.Second
	errorNotFoundCode = "route_not_found"
)

// NewRouter constructs the chi router with shared middleware, the API group
// and the public pages.
func NewRouter(opts ...Option) chi.Router {
	cfg := routerConfig{
		apiPath: defaultAPIPrefix,
	}

	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.middlewares = append([]func(http.Handler) http.Handler{
		middleware.RequestID,
		forwardedClientIP(cfg.proxyHops),
		middleware.Timeout(defaultTimeout),
	}, cfg.middlewares...)

	r := chi.NewRouter()

	if cfg.health == nil {
		cfg.health = NewHealthHandlers()
	}

	for _, mw := range cfg.middlewares {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError(errorNotFoundCode, fmt.Sprintf("no route for %s", req.URL.Path), http.StatusNotFound))
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("method_not_allowed", fmt.Sprintf("method %s not allowed on %s", req.Method, req.URL.Path), http.StatusMethodNotAllowed))
	})

	r.Get("/healthz", cfg.health.Healthz)
	r.Get("/readyz", cfg.health.Readyz)

	r.Route(cfg.apiPath, func(api chi.Router) {
		for _, registrar := range cfg.api {
			if registrar != nil {
				registrar(api)
			}
		}
	})

	if cfg.uploads != nil {
		r.Handle("/uploads/*", cfg.uploads)
	}
	if cfg.pages != nil {
		cfg.pages(r)
	}

	return r
}

// WithTrustedProxyHops sets how many proxies in front of the server append to
// X-Forwarded-For. Zero ignores the header and keys clients by RemoteAddr.
func WithTrustedProxyHops(n int) Option {
	return func(cfg *routerConfig) {
		cfg.proxyHops = max(n, 0)
	}
}

// WithMiddlewares appends additional global middleware to the router.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithHealthHandlers overrides the handlers used for /healthz and /readyz endpoints.
func WithHealthHandlers(h *HealthHandlers) Option {
	return func(cfg *routerConfig) {
		cfg.health = h
	}
}

// WithAPIRoutes adds registrars mounted under /api.
func WithAPIRoutes(regs ...RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.api = append(cfg.api, regs...)
	}
}

// WithPageRoutes configures the registrar for the public HTML pages.
func WithPageRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.pages = reg
	}
}

// WithUploads serves locally stored media under /uploads.
func WithUploads(h http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.uploads = h
	}
}
