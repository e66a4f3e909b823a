// Package httpapi implements the REST surface of §6.1 on top of net/http,
// wrapping internal/app.Application.
package httpapi

import (
	"net/http"
	"time"

	"lostfound-server/internal/app"
	"lostfound-server/internal/version"
	"lostfound-server/pkg/logger"
)

// Server wraps an Application with the HTTP routing and framing the core
// deliberately leaves as a collaborator concern (§1 Non-goals).
type Server struct {
	App *app.Application

	// AutoTick, when true, disables the manual /api/v1/game/tick endpoint —
	// the server already advances sessions on its own ticker (§6.1).
	AutoTick bool

	Addr string
}

// New creates a Server bound to application, listening on addr.
func New(application *app.Application, addr string, autoTick bool) *Server {
	return &Server{App: application, Addr: addr, AutoTick: autoTick}
}

// Mux builds the request router. Exposed separately from Run so tests can
// drive it with httptest without binding a socket.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/maps", withCORS(s.handleMaps))
	mux.HandleFunc("/api/v1/maps/", withCORS(s.handleMapByID))
	mux.HandleFunc("/api/v1/game/join", withCORS(s.handleJoin))
	mux.HandleFunc("/api/v1/game/players", withCORS(s.handlePlayers))
	mux.HandleFunc("/api/v1/game/state", withCORS(s.handleState))
	mux.HandleFunc("/api/v1/game/player/action", withCORS(s.handleAction))
	mux.HandleFunc("/api/v1/game/tick", withCORS(s.handleTick))

	mux.HandleFunc("/health", withCORS(s.handleHealth))
	mux.HandleFunc("/version", withCORS(s.handleVersion))

	registerDebugRoutes(mux, s)

	return mux
}

// Run starts the HTTP server with the fixed 30s read/write deadlines
// mandated by §5.
func (s *Server) Run() error {
	httpServer := &http.Server{
		Addr:         s.Addr,
		Handler:      s.Mux(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	logger.Log.Infof("lost-and-found server listening on %s", s.Addr)
	return httpServer.ListenAndServe()
}

func withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, HEAD, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, version.Info())
}
