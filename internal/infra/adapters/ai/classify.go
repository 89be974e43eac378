package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v2"
	"google.golang.org/genai"

	"lecture-summary/internal/domain"
)

// Provider texts that mean the key itself was rejected.
var invalidKeyMarkers = []string{"API key not valid", "API_KEY_INVALID"}

// ClassifyProviderError maps a provider failure onto the domain taxonomy:
// domain.ErrInvalidAPIKey for a rejected key, the error unchanged for context
// cancellation, and a wrap of domain.ErrProvider for everything else.
// Structured provider codes are checked before the error text.
func ClassifyProviderError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidAPIKey) || errors.Is(err, domain.ErrProvider) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if isInvalidKey(err) {
		return domain.ErrInvalidAPIKey
	}
	return fmt.Errorf("%w: %v", domain.ErrProvider, err)
}

func isInvalidKey(err error) bool {
	var gErr genai.APIError
	if errors.As(err, &gErr) && containsMarker(fmt.Sprint(gErr.Details)) {
		return true
	}
	var oErr *openai.Error
	if errors.As(err, &oErr) && oErr.StatusCode == http.StatusUnauthorized {
		return true
	}
	return containsMarker(err.Error())
}

func containsMarker(s string) bool {
	for _, m := range invalidKeyMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
