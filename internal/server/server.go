// Package server is the development backend: the HTTP contract the
// terminal client talks to, backed by the tutor and the profile store.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/mindsync-ai/mindsync/internal/api"
	"github.com/mindsync-ai/mindsync/internal/store"
)

// Tutor answers the LLM-backed routes.
type Tutor interface {
	Analyze(ctx context.Context, text string) ([]api.UnfamiliarWord, error)
	GenerateQuiz(ctx context.Context, text string) ([]api.QuizQuestion, error)
	Chat(ctx context.Context, message, documentText string) (string, error)
	Voice(ctx context.Context, audio []byte, filename, documentText string) (api.VoiceReply, error)
}

// Options configures the server.
type Options struct {
	Addr           string
	AllowedOrigins []string
	MaxUploadBytes int64
	// RequestTimeout bounds each request. Zero means two minutes.
	RequestTimeout time.Duration
	// Ping reports backend health for /healthz. Nil means always healthy.
	Ping   func(ctx context.Context) error
	Logger *zap.Logger
}

// Server serves the learning API.
type Server struct {
	tutor   Tutor
	profile store.ProfileRepo
	opts    Options
	logger  *zap.Logger
	router  chi.Router
}

// New builds a Server and its routes.
func New(tutor Tutor, profile store.ProfileRepo, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 2 * time.Minute
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		tutor:   tutor,
		profile: profile,
		opts:    opts,
		logger:  opts.Logger.With(zap.String("component", "server")),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}).Handler)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(s.opts.RequestTimeout))

	r.Post(api.PathUpload, s.handleUpload)
	r.Post(api.PathAnalyze, s.handleAnalyze)
	r.Post(api.PathMarkKnown, s.handleMarkKnown)
	r.Post(api.PathSetLevel, s.handleSetLevel)
	r.Post(api.PathGenerateQuiz, s.handleGenerateQuiz)
	r.Post(api.PathUpdateStats, s.handleUpdateStats)
	r.Post(api.PathChatText, s.handleChatText)
	r.Post(api.PathChatVoice, s.handleChatVoice)

	r.Get("/healthz", s.handleHealth)

	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on opts.Addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.opts.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
