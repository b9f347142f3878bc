package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/rickgao/mock-auction/internal/auction"
	"github.com/rickgao/mock-auction/internal/auth"
	"github.com/rickgao/mock-auction/internal/notify"
	"github.com/rickgao/mock-auction/internal/writer"
)

// Pinger reports storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WriterStats exposes snapshot writer counters.
type WriterStats interface {
	Stats() writer.WriterMetrics
	Pending() bool
}

// Options wires a Server. Engine and Gate are required.
type Options struct {
	InstanceID string
	Engine     *auction.Engine
	Gate       *auth.Gate
	Store      Pinger                          // Optional, health only
	Writer     WriterStats                     // Optional, health only
	Hub        *notify.Hub                     // Optional, enables /ws/notifications
	Middleware func(http.Handler) http.Handler // Optional, wraps the mux (metrics)
	Logger     *slog.Logger
}

// Server serves the auction API.
type Server struct {
	instanceID string
	engine     *auction.Engine
	gate       *auth.Gate
	store      Pinger
	writer     WriterStats
	hub        *notify.Hub
	middleware func(http.Handler) http.Handler
	logger     *slog.Logger
}

// New creates a Server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		instanceID: opts.InstanceID,
		engine:     opts.Engine,
		gate:       opts.Gate,
		store:      opts.Store,
		writer:     opts.Writer,
		hub:        opts.Hub,
		middleware: opts.Middleware,
		logger:     logger,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /version", s.handleVersion)

	mux.HandleFunc("GET /api/teams", s.handleListTeams)
	mux.HandleFunc("POST /api/teams", s.admin(s.handleAddTeam))
	mux.HandleFunc("GET /api/teams/{name}/squad", s.handleSquad)

	mux.HandleFunc("GET /api/players", s.handleListPlayers)
	mux.HandleFunc("GET /api/players/{name}", s.handleGetPlayer)
	mux.HandleFunc("POST /api/players", s.admin(s.handleAddPlayer))
	mux.HandleFunc("PUT /api/players", s.admin(s.handleModifyPlayer))
	mux.HandleFunc("DELETE /api/players/{name}", s.admin(s.handleDeletePlayer))

	mux.HandleFunc("GET /api/standings", s.handleStandings)
	mux.HandleFunc("GET /api/ticker", s.handleTicker)
	mux.HandleFunc("DELETE /api/data", s.admin(s.handleDeleteAll))

	mux.HandleFunc("GET /export/teams.csv", s.handleExportTeams)
	mux.HandleFunc("GET /export/players.csv", s.handleExportPlayers)

	if s.hub != nil {
		mux.Handle("GET /ws/notifications", s.hub)
	}

	if s.middleware != nil {
		return s.middleware(mux)
	}
	return mux
}

// admin rejects requests without a valid admin secret.
func (s *Server) admin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.gate.CheckRequest(r); err != nil {
			s.logger.Warn("admin request rejected",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"error", err,
			)
			s.writeError(w, r, err)
			return
		}
		next(w, r)
	}
}
