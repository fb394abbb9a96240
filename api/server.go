/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Structured request logging (httplog, ECS schema)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for frontend
  5. Heartbeat:  GET /health for liveness probes

  GET /ready pings the store for readiness probes.

ROUTE GROUPS:
  /api/days/*, /api/range, /api/weeks/*, /api/months/*   Views
  /api/shifts/*, /api/companies                          Shift records
  /api/vacations/*                                       Vacation flags and ranges
  /api/settings/*                                        Key/value settings
  /api/export/*                                          CSV/XLSX export
  /api/scenarios/*                                       Demo scenarios (dev only)
  /*                                                     Static files (frontend)

SECURITY NOTE:
  No authentication middleware. All endpoints are public; run behind a
  trusted proxy.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	AllowedOrigins []string
	// Scenarios mounts the demo scenario and reset routes.
	Scenarios bool
	// StaticDir is served at / when it exists.
	StaticDir string
	// Logger receives request logs; nil disables request logging.
	Logger *slog.Logger
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	if opts.Logger != nil {
		r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.SchemaECS,
		}))
	}
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Heartbeat("/health"))

	r.Get("/ready", h.Ready)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Views
		r.Route("/days/{date}", func(r chi.Router) {
			r.Get("/", h.GetDay)
			r.Get("/projection", h.GetDayProjection)
		})
		r.Get("/range", h.GetRange)
		r.Get("/weeks/{date}", h.GetWeek)
		r.Get("/months/{year}/{month}", h.GetMonth)
		r.Get("/last7days", h.GetLast7Days)
		r.Get("/cap", h.GetCap)
		r.Get("/compliance", h.GetCompliance)

		// Shift routes
		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", h.ListShifts)
			r.Post("/", h.SaveShift)
			r.Post("/import", h.ImportShifts)
			r.Get("/search", h.SearchShifts)
			r.Delete("/{id}", h.DeleteShift)
		})
		r.Get("/companies", h.ListCompanies)

		// Vacation routes
		r.Route("/vacations", func(r chi.Router) {
			r.Put("/days/{date}", h.ToggleVacationDay)
			r.Get("/ranges", h.ListVacationRanges)
			r.Post("/ranges", h.CreateVacationRange)
			r.Delete("/ranges/{id}", h.DeleteVacationRange)
		})

		// Settings routes
		r.Route("/settings/{key}", func(r chi.Router) {
			r.Get("/", h.GetSetting)
			r.Put("/", h.PutSetting)
		})

		r.Get("/export/{year}/{month}/{format}", h.ExportMonth)

		// Scenario routes
		if opts.Scenarios {
			r.Route("/scenarios", func(r chi.Router) {
				r.Get("/", h.ListScenarios)
				r.Get("/current", h.GetCurrentScenario)
				r.Post("/load", h.LoadScenario)
				r.Post("/reset", h.ResetStore)
			})
		}
	})

	if opts.StaticDir != "" {
		mountStatic(r, opts.StaticDir)
	}

	return r
}

// mountStatic serves a built single-page frontend, falling back to
// index.html for client-side routes.
func mountStatic(r chi.Router, staticDir string) {
	if _, err := os.Stat(staticDir); err != nil {
		return
	}

	fileServer := http.FileServer(http.Dir(staticDir))
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		fullPath := filepath.Join(staticDir, filepath.Clean("/"+r.URL.Path))
		if _, err := os.Stat(fullPath); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}
