// Package server exposes the RAG gateway over HTTP: a single method-gated
// route with a CORS gate in front, plus request normalization, optional ID
// token verification, and tag-based error mapping.
//
// Route map:
//
//	OPTIONS *  -> CORS preflight, empty 204
//	GET  /     -> health check
//	POST /     -> normalized query through the ask use case
//	other      -> 405
package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/istock-app/istock-rag/pkg/model"
	"github.com/istock-app/istock-rag/pkg/utils/logging"
)

const (
	// DefaultAddr is where the gateway listens unless configured otherwise.
	DefaultAddr = ":8080"

	// ShutdownTimeout is the maximum wait for in-flight requests on shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout guards against clients that stall mid-header.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout must cover a full retrieve-and-synthesize round trip.
	WriteTimeout = 90 * time.Second

	// IdleTimeout applies to keep-alive connections between requests.
	IdleTimeout = 120 * time.Second
)

// Asker runs one normalized query end to end.
type Asker interface {
	Handle(ctx context.Context, query *model.Query) (*model.Answer, error)
}

// Server is the HTTP front of the gateway.
type Server struct {
	asker      Asker
	verifier   TokenVerifier
	logger     *slog.Logger
	production bool
	mux        *http.ServeMux
}

type Option func(*Server)

// WithLogger replaces the default logger for request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithTokenVerifier turns on bearer-token authentication for POST requests.
func WithTokenVerifier(v TokenVerifier) Option {
	return func(s *Server) {
		s.verifier = v
	}
}

// WithProduction suppresses stack traces in error bodies.
func WithProduction(production bool) Option {
	return func(s *Server) {
		s.production = production
	}
}

func New(asker Asker, options ...Option) *Server {
	s := &Server{
		asker:  asker,
		logger: logging.Default(),
		mux:    http.NewServeMux(),
	}
	for _, opt := range options {
		opt(s)
	}

	s.mux.HandleFunc("/{$}", s.handleRoot)

	return s
}

// Handler returns the full handler chain: recovery outermost, then request
// logging, then the route.
func (s *Server) Handler() http.Handler {
	return chain(s.mux, recoveryMiddleware, loggingMiddleware)
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
		BaseContext: func(net.Listener) context.Context {
			return logging.With(context.Background(), s.logger)
		},
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
