// Package web provides the HTTP server and handlers for the inventory UI.
package web

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/InventoryUI/internal/config"
	"github.com/JonMunkholm/InventoryUI/internal/core"
	"github.com/JonMunkholm/InventoryUI/internal/metrics"
	"github.com/JonMunkholm/InventoryUI/internal/notify"
	"github.com/JonMunkholm/InventoryUI/internal/web/middleware"
)

//go:embed static
var staticFiles embed.FS

// Server is the HTTP server for the inventory UI.
type Server struct {
	service *core.Service
	notes   *notify.Queue
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server

	limiter       *rateLimiter
	importLimiter *rateLimiter
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, notes *notify.Queue, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		notes:   notes,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(metrics.Middleware)
	s.router.Use(chimw.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
	s.router.Use(requestMetadata)

	if s.cfg.Rate.Enabled {
		s.limiter = newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.importLimiter = newRateLimiter(s.cfg.Rate.ImportLimit, time.Minute)
		s.router.Use(s.limiter.middleware)
	}

	s.router.Use(middleware.Session(s.notes.Open))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.Get("/", s.handleIndex)
	s.router.Get("/help", s.handleHelp)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", metrics.Handler())
	s.router.Post("/notifications/{id}/dismiss", s.handleDismiss)

	s.router.Route("/inventory", func(r chi.Router) {
		r.Get("/", s.handleInventory)

		r.Get("/new", s.handleNewItem)
		r.Post("/new", s.handleCreateItem)

		r.Post("/delete-selected", s.handleDeleteSelected)

		r.Get("/import", s.handleImportPage)
		r.Group(func(r chi.Router) {
			if s.importLimiter != nil {
				r.Use(s.importLimiter.middleware)
			}
			r.Post("/import", s.handleImport)
			r.Post("/import/preview", s.handleImportPreview)
		})

		r.Get("/edit/{id}", s.handleEditItem)
		r.Post("/edit/{id}", s.handleUpdateItem)

		r.Get("/{id}", s.handleViewItem)
		r.Get("/{id}/edit", s.handleEditItem)
		r.Post("/{id}/edit", s.handleUpdateItem)
		r.Get("/{id}/delete", s.handleConfirmDelete)
		r.Post("/{id}/delete", s.handleDeleteItem)
	})

	if s.cfg.Backend.ProxyEnabled {
		s.mountBackendProxy()
	}
}

// mountBackendProxy forwards the item API paths to the backend so browser
// code can reach it on the UI's origin.
func (s *Server) mountBackendProxy() {
	target, err := url.Parse(s.cfg.Backend.URL)
	if err != nil {
		slog.Error("backend proxy disabled", "url", s.cfg.Backend.URL, "error", err)
		return
	}
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		slog.Warn("backend proxy error", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadGateway, "backend unavailable")
	}
	s.router.Handle("/allItems", proxy)
	s.router.Handle("/items", proxy)
	s.router.Handle("/items/*", proxy)
	slog.Info("backend proxy enabled", "target", target.String())
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.stop()
	}
	if s.importLimiter != nil {
		s.importLimiter.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(csp bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if csp {
				// htmx is loaded from unpkg; everything else is same-origin.
				w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestMetadata records the client IP for logs and handlers.
func requestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.ContextWithIPAddress(r.Context(), r.RemoteAddr)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
