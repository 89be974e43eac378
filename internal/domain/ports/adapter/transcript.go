package adapter

import "context"

// TranscriptFetcher retrieves the plain-text transcript of one lecture medium.
type TranscriptFetcher interface {
	// Fetch returns *domain.HTTPStatusError on a non-2xx answer and an error
	// wrapping domain.ErrNetworkFailure when the request could not complete.
	Fetch(ctx context.Context, lessonID, mediaID, bearerToken string) (string, error)
}
