// Package server provides the HTTP server for the mudra gesture menu.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/menu"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/stabilizer"
	"github.com/ayusman/mudra/internal/store"
)

// shutdownTimeout bounds how long Run waits for open requests after ctx ends.
const shutdownTimeout = 5 * time.Second

// Config holds the server configuration. Every field is optional; routes
// whose collaborator is missing are not registered.
type Config struct {
	App       *app.App
	Store     *store.Store // Defaults to the App's store
	Plugins   *plugin.Manager
	StaticDir string
	Logger    zerolog.Logger
}

// Server is the HTTP front end of the gesture pipeline.
type Server struct {
	config Config
	log    zerolog.Logger
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Store == nil && config.App != nil {
		config.Store = config.App.Store()
	}
	s := &Server{
		config: config,
		log:    config.Logger.With().Str("component", "server").Logger(),
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
		s.mux.HandleFunc("/api/pipeline", s.handlePipeline)
		s.mux.Handle("/api/events", NewEventsHandler(s.config.App, s.log))
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.App))
	}

	if s.config.Store != nil {
		sessions := api.NewSessionHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)

		// Keep a nil manager out of the interface.
		var lookup api.PluginLookup
		if s.config.Plugins != nil {
			lookup = s.config.Plugins
		}
		bindings := api.NewBindingHandler(s.config.Store, lookup)
		s.mux.Handle("/api/bindings", bindings)
		s.mux.Handle("/api/bindings/", bindings)
	}

	if s.config.Plugins != nil {
		s.mux.Handle("/api/plugins", api.NewPluginHandler(s.config.Plugins))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.App != nil {
		response["running"] = s.config.App.Running()
		response["session"] = s.config.App.SessionID()
	}
	writeJSON(w, http.StatusOK, response)
}

type menuState struct {
	Rows   int         `json:"rows"`
	Cols   int         `json:"cols"`
	Cursor menu.Cell   `json:"cursor"`
	Items  []menu.Item `json:"items"`
}

type stateResponse struct {
	Running    bool              `json:"running"`
	Session    string            `json:"session,omitempty"`
	Policy     stabilizer.Policy `json:"policy"`
	Event      app.Event         `json:"event"`
	Stabilizer stabilizer.State  `json:"stabilizer"`
	Menu       menuState         `json:"menu"`
}

// handleState handles GET /api/state: the latest event plus the menu.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	a := s.config.App
	grid := a.Navigator().Grid()
	rows, cols := grid.Size()
	writeJSON(w, http.StatusOK, stateResponse{
		Running:    a.Running(),
		Session:    a.SessionID(),
		Policy:     a.StabilizerConfig().Policy,
		Event:      a.Latest(),
		Stabilizer: a.State(),
		Menu: menuState{
			Rows:   rows,
			Cols:   cols,
			Cursor: grid.Cursor(),
			Items:  grid.Items(),
		},
	})
}

type pipelineRequest struct {
	Running *bool `json:"running"`
}

// handlePipeline reports (GET) or switches (POST {"running": bool}) the capture loop.
func (s *Server) handlePipeline(w http.ResponseWriter, r *http.Request) {
	a := s.config.App
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		var req pipelineRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Running == nil {
			writeError(w, http.StatusBadRequest, "running is required")
			return
		}
		if *req.Running {
			if err := a.Start(); err != nil {
				s.log.Warn().Err(err).Msg("failed to start pipeline")
				status := http.StatusInternalServerError
				if errors.Is(err, app.ErrNoCamera) || errors.Is(err, app.ErrNoDetector) {
					status = http.StatusConflict
				}
				writeError(w, status, err.Error())
				return
			}
		} else {
			a.Stop()
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"running": a.Running()})
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
