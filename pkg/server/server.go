package server

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/castillofj/touchline/pkg/repositories"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
)

// Server is the reference room server: the HTTP API that hands out
// snapshots plus the per-room WebSocket fan-out the sync client speaks to.
type Server struct {
	repo repositories.Repository
	hub  *Hub
}

// NewServerOptions are the options for creating a Server.
type NewServerOptions struct {
	Repository repositories.Repository
}

// NewServer creates a server on top of the given repository.
func NewServer(opts NewServerOptions) *Server {
	return &Server{
		repo: opts.Repository,
		hub:  NewHub(),
	}
}

// Hub exposes the fan-out hub, e.g. for tests.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Routes builds the chi router for the full API surface.
func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger())

	r.Post("/rooms", s.handleCreateRoom)
	r.Route("/rooms/{roomID}", func(r chi.Router) {
		r.Get("/", s.handleGetRoom)
		r.Put("/teams/{teamID}", s.handleUpdateTeam)
		r.Post("/match/start", s.handleStartMatch)
		r.Post("/match/end", s.handleEndMatch)
	})
	r.Get("/ws/{roomID}/{clientID}", s.handleWS)

	return r
}

func requestLogger() func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{})),
		&httplog.Options{
			Level:           slog.LevelInfo,
			Schema:          httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogRequestBody:  func(*http.Request) bool { return false },
			LogResponseBody: func(*http.Request) bool { return false },
		},
	)
}
