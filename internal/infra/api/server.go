package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"lecture-summary/internal/infra/metrics"
	"lecture-summary/internal/usecase"
)

// Limiter is the fixed-window check used for job submission.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type Options struct {
	// Auth enables bearer-token checks on /api/v1 when set.
	Auth *AuthManager
	// Limiter with SubmitPerMinute > 0 throttles POST /api/v1/generations.
	Limiter         Limiter
	SubmitPerMinute int
	RequestTimeout  time.Duration
}

// Server exposes the generation workflow and history over HTTP.
type Server struct {
	gen      usecase.GenerationUseCase
	history  usecase.HistoryUseCase
	opts     Options
	validate *RequestValidator
	log      *zerolog.Logger
}

func NewServer(gen usecase.GenerationUseCase, history usecase.HistoryUseCase, opts Options, logger *zerolog.Logger) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}
	l := logger.With().Str("component", "API").Logger()
	return &Server{gen: gen, history: history, opts: opts, validate: NewRequestValidator(), log: &l}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(TraceID(), RequestLog(s.log), Recover(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Timeout(s.opts.RequestTimeout))
		if s.opts.Auth != nil {
			r.Use(s.opts.Auth.Require())
		}

		r.Route("/generations", func(r chi.Router) {
			r.With(s.submitLimit()).Post("/", s.handleSubmit)
			r.Get("/status", s.handleStatus)
			r.Get("/result", s.handleResult)
		})
		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.handleHistoryList)
			r.Delete("/", s.handleHistoryClear)
			r.Get("/{id}", s.handleHistoryGet)
		})
	})
	return r
}

// NewHTTPServer builds the listener with the service's timeouts.
func NewHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
