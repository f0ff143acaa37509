package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/bidfeed/pkg/scheduler"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/status.go -pkg mocks -skip-ensure -fmt goimports . StatusProvider

// Server serves the generated feed file and the status of the last run
type Server struct {
	config   ConfigProvider
	status   StatusProvider
	feedPath string
	version  string
	debug    bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
}

// StatusProvider reports the last completed run
type StatusProvider interface {
	Status() (scheduler.Status, bool)
}

// New initializes a new server instance, feedPath is the file written by the emitter
func New(cfg ConfigProvider, status StatusProvider, feedPath, version string, debug bool) *Server {
	s := &Server{
		config:   cfg,
		status:   status,
		feedPath: feedPath,
		version:  version,
		debug:    debug,
		router:   routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	lgr.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           s.router,
		ReadHeaderTimeout: timeout,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}
	httpServer := s.httpServer
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		lgr.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			lgr.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("bidfeed", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(64 * 1024))
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
	})

	s.router.HandleFunc("GET /rss.xml", s.rssHandler)
	s.router.HandleFunc("GET /{$}", s.rssHandler)
}

// statusResponse is the body of the status endpoint
type statusResponse struct {
	Status     string    `json:"status"`
	Version    string    `json:"version"`
	Outcome    string    `json:"outcome,omitempty"`
	Items      int       `json:"items"`
	Runs       int       `json:"runs"`
	StartedAt  time.Time `json:"started_at,omitzero"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// statusHandler returns the state of the last run.
// status is "pending" before the first run, "error" if the feed was not written
// or the collection failed, "ok" otherwise.
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Status: "pending", Version: s.version}

	if st, ok := s.status.Status(); ok {
		resp.Status = "ok"
		resp.Outcome = string(st.Report.Outcome)
		resp.Items = st.Report.Items
		resp.Runs = st.Runs
		resp.StartedAt = st.Report.StartedAt
		resp.DurationMs = st.Report.Duration.Milliseconds()
		switch {
		case st.WriteErr != nil:
			resp.Status, resp.Error = "error", st.WriteErr.Error()
		case st.Report.Err != nil:
			resp.Status, resp.Error = "error", st.Report.Err.Error()
		}
	}

	RenderJSON(w, r, http.StatusOK, resp)
}

// RenderJSON sends JSON response
func RenderJSON(w http.ResponseWriter, _ *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			lgr.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// RenderError sends error response as JSON
func RenderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	RenderJSON(w, r, code, map[string]string{"error": errMsg})
}
