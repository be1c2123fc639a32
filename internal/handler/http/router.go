// Package http wires the storefront's routes: HTML pages, the active-order
// endpoint, and the operational surface (health, metrics, pprof).
package http

import (
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gnimmelf/eike-storefront/internal/render"
	"github.com/gnimmelf/eike-storefront/internal/service"
	"github.com/gnimmelf/eike-storefront/pkg/health"
	"github.com/gnimmelf/eike-storefront/pkg/middleware"
	"github.com/gnimmelf/eike-storefront/web"
)

// RouterConfig carries the route-level settings the router needs.
type RouterConfig struct {
	AppName    string
	SessionTTL time.Duration
	PprofCIDRs []string
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	storefront *service.Storefront,
	renderer *render.Renderer,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	// Static assets, served from the embedded filesystem.
	staticFS, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		// The embed is part of the binary; a missing subtree is a build
		// defect, not a runtime condition.
		panic(err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	pageHandler := NewPageHandler(storefront, renderer, cfg.AppName, logger)
	cartHandler := NewCartHandler(storefront, logger)

	// Storefront pages and the cart endpoint share the session cookie.
	r.Group(func(r chi.Router) {
		r.Use(Session(cfg.SessionTTL))

		r.Get("/", pageHandler.Home)
		r.Get("/products/{slug}", pageHandler.Product)
		r.Get("/collections/{slug}", pageHandler.Collection)

		r.Get("/api/active-order", cartHandler.ActiveOrder)
		r.Post("/api/active-order", cartHandler.Submit)
	})

	r.NotFound(pageHandler.NotFound)

	return r
}
