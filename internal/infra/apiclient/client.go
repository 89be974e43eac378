package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"lecture-summary/internal/domain"
	"lecture-summary/internal/domain/model"
	"lecture-summary/internal/infra/sched"
)

var _ sched.StatusSource = (*Client)(nil)

// Client calls the lecture-summary API over HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Is lets callers match API answers against the domain sentinels.
func (e *APIError) Is(target error) bool {
	switch e.Status {
	case http.StatusNotFound:
		return target == domain.ErrNotFound
	case http.StatusConflict:
		return target == domain.ErrAlreadyInProgress
	case http.StatusServiceUnavailable:
		return target == domain.ErrQueueFull
	case http.StatusBadRequest:
		if e.Message == domain.ErrInvalidAPIKey.Error() {
			return target == domain.ErrInvalidAPIKey
		}
		return target == domain.ErrInvalidArgument
	}
	return false
}

// NewClient constructs a client; token may be empty when the API runs without auth.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type SubmitRequest struct {
	LessonID    string `json:"lessonId"`
	MediaID     string `json:"mediaId"`
	BearerToken string `json:"bearerToken"`
	APIKey      string `json:"apiKey"`
}

// Submit starts a job and returns its id.
func (c *Client) Submit(ctx context.Context, in SubmitRequest) (string, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/generations", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		Status string `json:"status"`
		JobID  string `json:"jobId"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.JobID, nil
}

func (c *Client) Status(ctx context.Context) (model.StatusSnapshot, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/generations/status", nil)
	if err != nil {
		return model.StatusSnapshot{}, err
	}
	var snap model.StatusSnapshot
	if err := c.do(req, &snap); err != nil {
		return model.StatusSnapshot{}, err
	}
	return snap, nil
}

func (c *Client) Result(ctx context.Context) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/generations/result", nil)
	if err != nil {
		return "", err
	}
	var out struct {
		Summary string `json:"summary"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

func (c *Client) History(ctx context.Context) ([]*model.HistoryEntry, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/history", nil)
	if err != nil {
		return nil, err
	}
	var out []*model.HistoryEntry
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body *bytes.Reader) (*http.Request, error) {
	var (
		req *http.Request
		err error
	)
	if body == nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	}
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Error
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
