// Package server exposes the analyzer and the simulator state over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/alexiusacademia/gobeam/internal/beam"
	"github.com/alexiusacademia/gobeam/internal/logging"
	"github.com/alexiusacademia/gobeam/internal/session"
	"github.com/alexiusacademia/gobeam/internal/storage"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 5 * time.Second

// Options configures a Server. Zero values get defaults.
type Options struct {
	ConfigPath string         // file behind /api/config/save and /api/config/load
	Store      *storage.Store // preset library; nil disables /api/presets
	Logger     *log.Logger
	Rate       rate.Limit // requests per second per client
	Burst      int
}

// Server holds the shared simulator state.
type Server struct {
	mu    sync.RWMutex
	state session.State

	opts   Options
	logger *log.Logger
	router *mux.Router
}

// New creates a server whose state starts from cfg.
func New(cfg beam.Configuration, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Rate == 0 {
		opts.Rate = 20
	}
	if opts.Burst == 0 {
		opts.Burst = 40
	}

	s := &Server{
		state:  session.New(cfg),
		opts:   opts,
		logger: opts.Logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(NewIPRateLimiter(s.opts.Rate, s.opts.Burst).Middleware)

	api.HandleFunc("/health", s.health).Methods("GET")
	api.HandleFunc("/config", s.getConfig).Methods("GET")
	api.HandleFunc("/config", s.putConfig).Methods("PUT")
	api.HandleFunc("/config/save", s.saveConfig).Methods("POST")
	api.HandleFunc("/config/load", s.loadConfig).Methods("POST")
	api.HandleFunc("/analysis", s.currentAnalysis).Methods("GET")
	api.HandleFunc("/analysis", s.postAnalysis).Methods("POST")
	api.HandleFunc("/state", s.getState).Methods("GET")
	api.HandleFunc("/events", s.postEvents).Methods("POST")
	api.HandleFunc("/materials", s.materials).Methods("GET")
	api.HandleFunc("/sections", s.sections).Methods("GET")
	api.HandleFunc("/diagram.{format:png|svg}", s.diagram).Methods("GET")
	api.HandleFunc("/report.pdf", s.reportPDF).Methods("GET")
	api.HandleFunc("/samples.xlsx", s.samplesXLSX).Methods("GET")

	if s.opts.Store != nil {
		api.HandleFunc("/presets", s.listPresets).Methods("GET")
		api.HandleFunc("/presets/{name}", s.getPreset).Methods("GET")
		api.HandleFunc("/presets/{name}", s.putPreset).Methods("PUT")
		api.HandleFunc("/presets/{name}", s.deletePreset).Methods("DELETE")
		api.HandleFunc("/presets/{name}/apply", s.applyPreset).Methods("POST")
	}

	s.router = r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Config returns the current configuration.
func (s *Server) Config() beam.Configuration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Config
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"remote", clientIP(r),
			"duration", time.Since(start),
		)
	})
}
