package api

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"lecture-summary/internal/domain"
	"lecture-summary/internal/infra/logging"
	"lecture-summary/internal/infra/redis"
	"lecture-summary/internal/usecase"
)

type submitRequest struct {
	LessonID    string `json:"lessonId" validate:"required,max=256"`
	MediaID     string `json:"mediaId" validate:"required,max=256"`
	BearerToken string `json:"bearerToken" validate:"required"`
	// APIKey is checked by the orchestrator so an empty key is recorded as a job error.
	APIKey string `json:"apiKey"`
}

type submitResponse struct {
	Status string `json:"status"`
	JobID  string `json:"jobId"`
}

type resultResponse struct {
	Summary string `json:"summary"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Validate(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	jobID, err := s.gen.Submit(r.Context(), usecase.GenerationRequest{
		LessonID:    req.LessonID,
		MediaID:     req.MediaID,
		BearerToken: req.BearerToken,
		APIKey:      req.APIKey,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, submitResponse{Status: "started", JobID: jobID})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap, err := s.gen.Status(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	summary, err := s.gen.Result(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Summary: summary})
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.history.List(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	e, err := s.history.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	if err := s.history.Clear(r.Context()); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// submitLimit is a no-op unless a limiter and a positive rate are configured.
// Limiter failures let the request through.
func (s *Server) submitLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if s.opts.Limiter == nil || s.opts.SubmitPerMinute <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			ok, err := s.opts.Limiter.Allow(r.Context(), redis.SubmitKey(host), s.opts.SubmitPerMinute, time.Minute)
			if err != nil {
				logging.With(r.Context(), s.log).Warn().Err(err).Msg("rate limiter unavailable")
			} else if !ok {
				writeError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidAPIKey):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrAlreadyInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrQueueFull):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		logging.With(r.Context(), s.log).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
