package echo360

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"lecture-summary/internal/config"
	"lecture-summary/internal/domain"
	"lecture-summary/internal/domain/ports/adapter"
	"lecture-summary/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.TranscriptFetcher = (*TranscriptFetcher)(nil)

const acceptHeader = "application/json, text/plain, */*"

// TranscriptFetcher downloads plain-text transcripts from the Echo360 player API.
type TranscriptFetcher struct {
	base        string // e.g., https://echo360.net.au/api/ui/echoplayer/lessons
	refererBase string // e.g., https://echo360.net.au/lesson
	userAgent   string
	client      *http.Client
	log         *zerolog.Logger
}

func NewTranscriptFetcher(cfg config.TranscriptConfig, logger *zerolog.Logger) *TranscriptFetcher {
	base := cfg.BaseURL
	if base == "" {
		base = config.DefaultTranscriptBaseURL
	}
	referer := cfg.RefererBase
	if referer == "" {
		referer = config.DefaultRefererBase
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = config.DefaultUserAgent
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	l := logger.With().Str("component", "TranscriptFetcher").Logger()
	return &TranscriptFetcher{
		base:        strings.TrimRight(base, "/"),
		refererBase: strings.TrimRight(referer, "/"),
		userAgent:   ua,
		client:      &http.Client{Timeout: timeout},
		log:         &l,
	}
}

// TranscriptURL builds {base}/{lessonId}/medias/{mediaId}/transcript-file?format=text.
func (f *TranscriptFetcher) TranscriptURL(lessonID, mediaID string) string {
	return fmt.Sprintf("%s/%s/medias/%s/transcript-file?format=text",
		f.base, url.PathEscape(lessonID), url.PathEscape(mediaID))
}

func (f *TranscriptFetcher) Fetch(ctx context.Context, lessonID, mediaID, bearerToken string) (string, error) {
	u := f.TranscriptURL(lessonID, mediaID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", domain.ErrInvalidArgument, err)
	}
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Referer", fmt.Sprintf("%s/%s_classroom", f.refererBase, url.PathEscape(lessonID)))

	f.log.Debug().Str("url", u).Msg("fetching transcript")
	resp, err := f.client.Do(req)
	if err != nil {
		metrics.IncTranscriptFetch(0)
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", domain.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()
	metrics.IncTranscriptFetch(resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &domain.HTTPStatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", domain.ErrNetworkFailure, err)
	}
	return string(body), nil
}
