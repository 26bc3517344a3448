// Package api provides the typed, OpenAPI-documented status API.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-fuego/fuego"
	"github.com/go-fuego/fuego/option"
)

// Server represents the Fuego API server.
type Server struct {
	fuego   *fuego.Server
	deps    *Dependencies
	version string
}

// Dependencies contains the readers the API exposes. Runs may be nil when history is disabled.
type Dependencies struct {
	Session  SessionReader
	Jobs     JobReader
	Telegram TelegramStatus
	Runs     RunLister
}

// Config holds API documentation settings.
type Config struct {
	Title       string
	Description string
	Version     string
}

// NewServer creates a new Fuego API server. It is served through Handler,
// so the host router owns the listener and middleware.
func NewServer(cfg *Config, deps *Dependencies) *Server {
	s := fuego.NewServer(
		fuego.WithEngineOptions(
			fuego.WithOpenAPIConfig(fuego.OpenAPIConfig{
				PrettyFormatJSON: true,
			}),
		),
	)

	s.OpenAPI.Description().Info.Title = cfg.Title
	s.OpenAPI.Description().Info.Description = cfg.Description
	s.OpenAPI.Description().Info.Version = cfg.Version

	srv := &Server{
		fuego:   s,
		deps:    deps,
		version: cfg.Version,
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) registerRoutes() {
	fuego.Get(s.fuego, "/health", s.healthCheck,
		option.Summary("Health Check"),
		option.Description("Returns the service and bot client status"),
		option.Tags("System"),
	)

	fuego.Get(s.fuego, "/api/v1/session", s.getSession,
		option.Summary("Get Session"),
		option.Description("Returns the collection session grouped by episode, the toggles and the running delivery"),
		option.Tags("Session"),
	)

	fuego.Get(s.fuego, "/api/v1/runs", s.listRuns,
		option.Summary("List Runs"),
		option.Description("Returns the most recent delivery runs"),
		option.Tags("History"),
		option.Query("limit", "Number of runs (default: 10, max: 100)"),
	)
}

// Handler returns the underlying mux serving the API routes.
func (s *Server) Handler() http.Handler {
	return s.fuego.Mux
}

// MountDocsOn mounts the OpenAPI documentation routes (/docs, /openapi.json)
// on a Chi router.
func (s *Server) MountDocsOn(r interface {
	Get(pattern string, handlerFn http.HandlerFunc)
}, title, description string) {
	scalarHandler := ScalarHandler("/openapi.json", title, description)
	r.Get("/docs", func(w http.ResponseWriter, req *http.Request) {
		scalarHandler.ServeHTTP(w, req)
	})

	r.Get("/openapi.json", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		spec := s.fuego.OpenAPI.Description()
		if err := json.NewEncoder(w).Encode(spec); err != nil {
			http.Error(w, "Failed to encode OpenAPI spec", http.StatusInternalServerError)
		}
	})
}
