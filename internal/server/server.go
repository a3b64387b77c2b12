// Package server provides the HTTP server for the chutki snap detection service.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/chutki/internal/app"
	"github.com/ayusman/chutki/internal/server/api"
	"github.com/ayusman/chutki/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	App       *app.App
}

// Server represents the HTTP server for the chutki application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.App != nil {
		s.mux.HandleFunc("/api/state", s.handleState)
		s.mux.HandleFunc("/api/detector", s.handleDetector)

		eventsHandler := NewEventsHandler(s.config.App)
		s.mux.Handle("/api/events", eventsHandler)
	}

	// Register profile API handler if Store is configured
	if s.config.Store != nil {
		profileHandler := api.NewProfileHandler(s.config.Store, s.config.App)
		s.mux.Handle("/api/profiles", profileHandler)
		s.mux.Handle("/api/profiles/", profileHandler)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	writeJSON(w, http.StatusOK, response)
}

// stateResponse is the body of GET /api/state. The UI layer maps the
// state string to its visual indicator.
type stateResponse struct {
	State      string          `json:"state"`
	Enabled    bool            `json:"enabled"`
	SnapCount  int             `json:"snap_count"`
	LastEvents []eventResponse `json:"last_events"`
}

type eventResponse struct {
	ID   string  `json:"id"`
	Hand string  `json:"hand"`
	Time float64 `json:"time"`
}

// handleState handles GET requests to /api/state.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	a := s.config.App
	events := a.RecentEvents()
	resp := stateResponse{
		State:      string(a.State()),
		Enabled:    a.IsEnabled(),
		SnapCount:  a.SnapCount(),
		LastEvents: make([]eventResponse, 0, len(events)),
	}
	for _, e := range events {
		resp.LastEvents = append(resp.LastEvents, eventResponse{
			ID:   e.ID,
			Hand: string(e.Hand),
			Time: e.Time,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

type detectorRequest struct {
	Enabled bool `json:"enabled"`
}

// handleDetector handles POST requests to /api/detector to enable or
// disable snap detection.
func (s *Server) handleDetector(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req detectorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.config.App.SetEnabled(req.Enabled)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"enabled": s.config.App.IsEnabled(),
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
