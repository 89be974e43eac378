package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"lecture-summary/internal/domain"
	"lecture-summary/internal/domain/model"
)

func TestSubmitSendsBodyAndToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/generations" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer jwt-1" {
			t.Errorf("unexpected auth header %q", got)
		}
		var in SubmitRequest
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.LessonID != "L1" || in.APIKey != "k" {
			t.Errorf("unexpected body %+v", in)
		}
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"status":"started","jobId":"J1"}`))
	}))
	defer srv.Close()

	id, err := NewClient(srv.URL+"/", "jwt-1").Submit(context.Background(), SubmitRequest{LessonID: "L1", MediaID: "M1", BearerToken: "t", APIKey: "k"})
	if err != nil || id != "J1" {
		t.Fatalf("submit: %q %v", id, err)
	}
}

func TestErrorsMapToDomain(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusConflict, `{"error":"a generation is already in progress"}`, domain.ErrAlreadyInProgress},
		{http.StatusBadRequest, `{"error":"Invalid API Key, please provide a valid key"}`, domain.ErrInvalidAPIKey},
		{http.StatusBadRequest, `{"error":"invalid argument: lessonId failed on 'required' validation"}`, domain.ErrInvalidArgument},
		{http.StatusServiceUnavailable, `{"error":"worker queue full"}`, domain.ErrQueueFull},
		{http.StatusNotFound, `{"error":"not found"}`, domain.ErrNotFound},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(tc.body))
		}))
		_, err := NewClient(srv.URL, "").Submit(context.Background(), SubmitRequest{})
		srv.Close()
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
		var ae *APIError
		if !errors.As(err, &ae) || ae.Status != tc.status {
			t.Errorf("status %d: expected APIError, got %v", tc.status, err)
		}
	}
}

func TestStatusAndResult(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/generations/status", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","error":"HTTP error! status: 404","inProgress":false}`))
	})
	mux.HandleFunc("/api/v1/generations/result", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"summary":"# S"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	c := NewClient(srv.URL, "")

	snap, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if snap.Status != model.GenerationError || snap.Error == nil || *snap.Error != "HTTP error! status: 404" {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	sum, err := c.Result(context.Background())
	if err != nil || sum != "# S" {
		t.Errorf("result: %q %v", sum, err)
	}
}
