package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"lecture-summary/internal/domain"
	"lecture-summary/internal/domain/model"
	"lecture-summary/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(nil)
	return &logger
}

type stubGenerationUC struct {
	submitErr error
	submitted []usecase.GenerationRequest
	snap      model.StatusSnapshot
	result    string
}

func (s *stubGenerationUC) Run(ctx context.Context, req usecase.GenerationRequest) (string, error) {
	return s.result, nil
}

func (s *stubGenerationUC) Submit(ctx context.Context, req usecase.GenerationRequest) (string, error) {
	if s.submitErr != nil {
		return "", s.submitErr
	}
	s.submitted = append(s.submitted, req)
	return "01JOBID", nil
}

func (s *stubGenerationUC) Status(ctx context.Context) (model.StatusSnapshot, error) {
	return s.snap, nil
}

func (s *stubGenerationUC) Result(ctx context.Context) (string, error) {
	if s.result == "" {
		return "", domain.ErrNotFound
	}
	return s.result, nil
}

func (s *stubGenerationUC) RecoverInterrupted(ctx context.Context) error { return nil }

type stubHistoryUC struct {
	entries []*model.HistoryEntry
	cleared bool
}

func (s *stubHistoryUC) Archive(ctx context.Context, content string) (*model.HistoryEntry, error) {
	return nil, nil
}
func (s *stubHistoryUC) List(ctx context.Context) ([]*model.HistoryEntry, error) { return s.entries, nil }
func (s *stubHistoryUC) Get(ctx context.Context, id string) (*model.HistoryEntry, error) {
	for _, e := range s.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}
func (s *stubHistoryUC) Clear(ctx context.Context) error {
	s.cleared = true
	s.entries = nil
	return nil
}

type countingLimiter struct{ calls int }

func (l *countingLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	l.calls++
	return l.calls <= limit, nil
}

func do(t *testing.T, h http.Handler, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != "" {
		rd = bytes.NewReader([]byte(body))
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

const validBody = `{"lessonId":"L1","mediaId":"M1","bearerToken":"tok","apiKey":"AIza"}`

func TestSubmit(t *testing.T) {
	gen := &stubGenerationUC{}
	h := NewServer(gen, &stubHistoryUC{}, Options{}, newTestLogger()).Routes()

	rr := do(t, h, http.MethodPost, "/api/v1/generations", validBody, nil)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp submitResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "started" || resp.JobID != "01JOBID" {
		t.Errorf("unexpected response %+v", resp)
	}
	if len(gen.submitted) != 1 || gen.submitted[0].MediaID != "M1" || gen.submitted[0].APIKey != "AIza" {
		t.Errorf("unexpected submitted request %+v", gen.submitted)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestSubmitErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"bad json", `{"lessonId":`, nil, http.StatusBadRequest},
		{"unknown field", `{"lessonId":"L","mediaId":"M","bearerToken":"t","extra":1}`, nil, http.StatusBadRequest},
		{"missing media", `{"lessonId":"L1","bearerToken":"tok"}`, nil, http.StatusBadRequest},
		{"invalid key", validBody, domain.ErrInvalidAPIKey, http.StatusBadRequest},
		{"in progress", validBody, domain.ErrAlreadyInProgress, http.StatusConflict},
		{"queue full", validBody, domain.ErrQueueFull, http.StatusServiceUnavailable},
		{"store down", validBody, context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &stubGenerationUC{submitErr: tc.err}
			h := NewServer(gen, &stubHistoryUC{}, Options{}, newTestLogger()).Routes()
			rr := do(t, h, http.MethodPost, "/api/v1/generations", tc.body, nil)
			if rr.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestSubmitValidationNamesJSONField(t *testing.T) {
	h := NewServer(&stubGenerationUC{}, &stubHistoryUC{}, Options{}, newTestLogger()).Routes()
	rr := do(t, h, http.MethodPost, "/api/v1/generations", `{"lessonId":"L1","bearerToken":"tok"}`, nil)
	if !strings.Contains(rr.Body.String(), "mediaId") {
		t.Errorf("expected error to name mediaId, got %s", rr.Body.String())
	}
}

func TestStatusShape(t *testing.T) {
	gen := &stubGenerationUC{snap: model.NewStatusSnapshot(model.StatusRecord{Status: model.GenerationIdle}, false)}
	h := NewServer(gen, &stubHistoryUC{}, Options{}, newTestLogger()).Routes()

	rr := do(t, h, http.MethodGet, "/api/v1/generations/status", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	got := strings.TrimSpace(rr.Body.String())
	if got != `{"status":"idle","error":null,"inProgress":false}` {
		t.Errorf("unexpected body %s", got)
	}
}

func TestResult(t *testing.T) {
	gen := &stubGenerationUC{}
	h := NewServer(gen, &stubHistoryUC{}, Options{}, newTestLogger()).Routes()

	if rr := do(t, h, http.MethodGet, "/api/v1/generations/result", "", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	gen.result = "# Summary"
	rr := do(t, h, http.MethodGet, "/api/v1/generations/result", "", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"summary":"# Summary"`) {
		t.Fatalf("unexpected result response %d %s", rr.Code, rr.Body.String())
	}
}

func TestHistoryRoutes(t *testing.T) {
	hist := &stubHistoryUC{entries: []*model.HistoryEntry{
		model.NewHistoryEntry("# B", time.UnixMilli(2000)),
		model.NewHistoryEntry("# A", time.UnixMilli(1000)),
	}}
	h := NewServer(&stubGenerationUC{}, hist, Options{}, newTestLogger()).Routes()

	rr := do(t, h, http.MethodGet, "/api/v1/history", "", nil)
	var list []model.HistoryEntry
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil || len(list) != 2 || list[0].Title != "B" {
		t.Fatalf("unexpected list %d %s", rr.Code, rr.Body.String())
	}

	if rr := do(t, h, http.MethodGet, "/api/v1/history/1000", "", nil); rr.Code != http.StatusOK {
		t.Errorf("expected 200 for known id, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/api/v1/history/42", "", nil); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown id, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodDelete, "/api/v1/history", "", nil); rr.Code != http.StatusNoContent || !hist.cleared {
		t.Errorf("expected 204 and cleared history, got %d", rr.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	auth := NewAuthManager("test-api-jwt-secret", time.Minute)
	h := NewServer(&stubGenerationUC{}, &stubHistoryUC{}, Options{Auth: auth}, newTestLogger()).Routes()

	if rr := do(t, h, http.MethodGet, "/health", "", nil); rr.Code != http.StatusOK {
		t.Fatalf("health must stay open, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/api/v1/generations/status", "", nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/api/v1/generations/status", "", map[string]string{"Authorization": "Basic abc"}); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong scheme, got %d", rr.Code)
	}

	other, _ := NewAuthManager("another-secret", time.Minute).Mint("cli")
	if rr := do(t, h, http.MethodGet, "/api/v1/generations/status", "", map[string]string{"Authorization": "Bearer " + other}); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for foreign signature, got %d", rr.Code)
	}

	tok, err := auth.Mint("cli")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if rr := do(t, h, http.MethodGet, "/api/v1/generations/status", "", map[string]string{"Authorization": "Bearer " + tok}); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rr.Code)
	}
}

func TestSubmitRateLimited(t *testing.T) {
	lim := &countingLimiter{}
	h := NewServer(&stubGenerationUC{}, &stubHistoryUC{}, Options{Limiter: lim, SubmitPerMinute: 1}, newTestLogger()).Routes()

	if rr := do(t, h, http.MethodPost, "/api/v1/generations", validBody, nil); rr.Code != http.StatusAccepted {
		t.Fatalf("first submit: %d", rr.Code)
	}
	if rr := do(t, h, http.MethodPost, "/api/v1/generations", validBody, nil); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	// reads are not limited
	if rr := do(t, h, http.MethodGet, "/api/v1/generations/status", "", nil); rr.Code != http.StatusOK {
		t.Fatalf("status read: %d", rr.Code)
	}
	if lim.calls != 2 {
		t.Errorf("expected limiter consulted twice, got %d", lim.calls)
	}
}

func TestRecoverMiddleware(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }), TraceID(), Recover(newTestLogger()))
	rr := do(t, h, http.MethodGet, "/", "", nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}
