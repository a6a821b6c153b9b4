package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/rs/cors"

	"content-planner/internal/activity"
	"content-planner/internal/auth"
	"content-planner/internal/tasks"
)

type Options struct {
	CORSOrigins     []string
	AuthSecret      string
	ShutdownTimeout time.Duration
}

// Server hosts the Remote Task API.
type Server struct {
	repo   tasks.Repository
	events activity.Logger
	opts   Options
}

func New(repo tasks.Repository, events activity.Logger, opts Options) *Server {
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	return &Server{repo: repo, events: events, opts: opts}
}

// Handler returns the full middleware chain: request id, access log, CORS,
// then the routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	guard := auth.New([]byte(s.opts.AuthSecret))
	tasks.Routes(mux, s.repo, s.events, guard.Wrap)

	c := cors.New(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Content-Type", "Authorization", "X-Request-Id", "X-Platform",
			"X-Session-Id", "X-App-Version", "Idempotency-Key",
		},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
	})

	return requestID(accessLog(c.Handler(mux)))
}

// ListenAndServe serves on addr until ctx is cancelled, then drains open
// requests for up to ShutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("API server is running on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
