// Package httpapi serves the tracker over a small JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/blackwell-systems/birthlog/internal/tracker"
)

// Options configures a Server.
type Options struct {
	// RateLimit is the average requests per second allowed per client.
	// Zero disables limiting.
	RateLimit      float64
	RateBurst      int
	AllowedOrigins []string
	Logger         *slog.Logger

	// Ping checks the database for /health. Nil reports healthy.
	Ping func(ctx context.Context) error
}

// Server exposes a Tracker over HTTP.
type Server struct {
	tracker *tracker.Tracker
	metrics *Metrics
	limiter *RateLimiter
	origins []string
	ping    func(ctx context.Context) error
	logger  *slog.Logger
}

// New returns a Server for tr.
func New(tr *tracker.Tracker, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		tracker: tr,
		metrics: NewMetrics(),
		limiter: NewRateLimiter(opts.RateLimit, opts.RateBurst),
		origins: opts.AllowedOrigins,
		ping:    opts.Ping,
		logger:  logger,
	}
	s.limiter.rejected = s.metrics.rateLimited.Inc
	return s
}

// Handler returns the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.limiter.Middleware)
	r.Use(s.metrics.Monitor)

	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/records", s.listRecords).Methods(http.MethodGet)
	api.HandleFunc("/records", s.createRecord).Methods(http.MethodPost)
	api.HandleFunc("/records/{id}", s.updateRecord).Methods(http.MethodPut)
	api.HandleFunc("/records/{id}", s.deleteRecord).Methods(http.MethodDelete)
	api.HandleFunc("/streak", s.getStreak).Methods(http.MethodGet)
	api.HandleFunc("/streak/goal", s.setGoal).Methods(http.MethodPut)
	api.HandleFunc("/achievements", s.listAchievements).Methods(http.MethodGet)
	api.HandleFunc("/preferences", s.getPreferences).Methods(http.MethodGet)
	api.HandleFunc("/preferences", s.putPreferences).Methods(http.MethodPut)

	cors := handlers.CORS(
		handlers.AllowedOrigins(s.origins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.ExposedHeaders([]string{"Content-Length"}),
	)
	return cors(r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go s.limiter.Cleanup(cleanupCtx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}
