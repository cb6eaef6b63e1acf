package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/shortenhub/shorten/internal/auth"
	"github.com/shortenhub/shorten/internal/config"
	"github.com/shortenhub/shorten/internal/events"
	"github.com/shortenhub/shorten/internal/infrastructure/telemetry"
	"github.com/shortenhub/shorten/internal/processing/links"
	"github.com/shortenhub/shorten/internal/transport/http/middleware"
	"github.com/shortenhub/shorten/pkg/httputils"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var spanNames = map[string]string{
	"GET /health":             "health",
	"GET /metrics":            "metrics",
	"POST /api/links":         "links.create",
	"GET /api/links":          "links.list",
	"DELETE /api/links/{id}":  "links.delete",
	"POST /api/links/analyze": "links.analyze",
	"GET /api/links/{id}/qr":  "links.qr",
	"GET /api/branding/logo":  "branding.logo",
	"PUT /api/branding/logo":  "branding.logo.set",
	"POST /api/auth/signup":   "auth.signup",
	"POST /api/auth/signin":   "auth.signin",
	"POST /api/auth/signout":  "auth.signout",
	"GET /api/auth/session":   "auth.session",
}

type RouterOptions struct {
	EnableCORS    bool
	EnableLogging bool
	EnableMetrics bool

	// RequireAuth gates the link routes behind a verified session. Set when
	// history is account-backed; the device-profile backend runs open.
	RequireAuth bool
}

func DefaultRouterOptions() RouterOptions {
	return RouterOptions{
		EnableCORS:    true,
		EnableLogging: true,
		EnableMetrics: true,
	}
}

type RouterDeps struct {
	Links     *links.Service
	Auth      *auth.Service
	Limiter   *middleware.RedisFixedWindowLimiter
	Publisher *events.Publisher

	// Branding is only set on the device-profile backend, where the local
	// store carries the optional logo key.
	Branding BrandingStore
}

func NewRouter(cfg *config.Config, deps RouterDeps) http.Handler {
	opts := DefaultRouterOptions()
	opts.RequireAuth = cfg.Store.Backend == config.StoreMongo
	return NewRouterWithOptions(cfg, deps, opts)
}

func NewRouterWithOptions(cfg *config.Config, deps RouterDeps, opts RouterOptions) http.Handler {
	mux := http.NewServeMux()

	healthHandler := NewHealthHandler()
	linksHandler := NewLinksHandler(deps.Links, deps.Publisher)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httputils.RespondJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("GET /metrics", healthHandler.Metrics())

	var linkMiddlewares []func(http.Handler) http.Handler
	if deps.Auth != nil {
		linkMiddlewares = append(linkMiddlewares, middleware.Authenticate(deps.Auth.Verify))
	}
	if opts.RequireAuth {
		linkMiddlewares = append(linkMiddlewares, middleware.RequireAuth)
	}

	writeMiddlewares := linkMiddlewares
	if deps.Limiter != nil {
		writeMiddlewares = append(append([]func(http.Handler) http.Handler{}, linkMiddlewares...),
			middleware.RateLimitMiddleware(deps.Limiter))
	}

	mux.Handle("POST /api/links", middleware.Chain(
		http.HandlerFunc(linksHandler.Create), writeMiddlewares...))
	mux.Handle("POST /api/links/analyze", middleware.Chain(
		http.HandlerFunc(linksHandler.Analyze), writeMiddlewares...))
	mux.Handle("GET /api/links", middleware.Chain(
		http.HandlerFunc(linksHandler.List), linkMiddlewares...))
	mux.Handle("DELETE /api/links/{id}", middleware.Chain(
		http.HandlerFunc(linksHandler.Delete), linkMiddlewares...))
	mux.Handle("GET /api/links/{id}/qr", middleware.Chain(
		http.HandlerFunc(linksHandler.QRCode), linkMiddlewares...))

	if deps.Branding != nil {
		brandingHandler := NewBrandingHandler(deps.Branding)
		mux.Handle("GET /api/branding/logo", middleware.Chain(
			http.HandlerFunc(brandingHandler.Logo), linkMiddlewares...))
		mux.Handle("PUT /api/branding/logo", middleware.Chain(
			http.HandlerFunc(brandingHandler.SetLogo), writeMiddlewares...))
	}

	if deps.Auth != nil {
		authHandler := NewAuthHandler(deps.Auth)
		mux.HandleFunc("POST /api/auth/signup", authHandler.SignUp)
		mux.HandleFunc("POST /api/auth/signin", authHandler.SignIn)
		mux.HandleFunc("POST /api/auth/signout", authHandler.SignOut)
		mux.HandleFunc("GET /api/auth/session", authHandler.Session)
	}

	var innerHandler http.Handler = mux
	if opts.EnableCORS {
		innerHandler = middleware.CORSMiddleware(innerHandler)
	}
	if opts.EnableLogging {
		innerHandler = middleware.LoggingMiddleware(innerHandler)
	}
	if opts.EnableMetrics {
		innerHandler = middleware.MetricsMiddleware(innerHandler)
	}

	otelOptions := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			key := r.Method + " " + r.Pattern
			if name, ok := spanNames[key]; ok {
				return name
			}
			if r.Pattern != "" {
				return r.Pattern
			}
			path := strings.TrimSpace(r.URL.Path)
			if path == "" {
				path = "/"
			}
			return path
		}),
	}

	if telemetry.TracerProvider != nil {
		otelOptions = append(otelOptions, otelhttp.WithTracerProvider(telemetry.TracerProvider))
	}

	return otelhttp.NewHandler(innerHandler, cfg.App.Name, otelOptions...)
}
