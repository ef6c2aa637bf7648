package scrape

import (
	"context"
	"time"

	"github.com/fwojciec/pagescrape"
)

// FetchFunc is the signature for a single fetch attempt.
type FetchFunc func(ctx context.Context, req pagescrape.FetchRequest) (string, error)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// FixedDelays returns the waits between attempts for a retry policy of
// attempts total tries separated by a constant delay.
func FixedDelays(attempts int, delay time.Duration) []time.Duration {
	if attempts <= 1 {
		return nil
	}
	delays := make([]time.Duration, attempts-1)
	for i := range delays {
		delays[i] = delay
	}
	return delays
}

// FetchWithRetryDelays calls fetch until it succeeds or every attempt has
// failed. There is one more attempt than there are delays.
// The logger, if provided, is called before each retry.
func FetchWithRetryDelays(ctx context.Context, req pagescrape.FetchRequest, fetch FetchFunc, logger LogFunc, delays []time.Duration) (string, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		html, err := fetch(ctx, req)
		if err == nil {
			return html, nil
		}
		lastErr = err

		// Invalid requests fail the same way every time.
		if pagescrape.ErrorCode(err) == pagescrape.EINVALID {
			return "", err
		}

		if attempt >= maxAttempts-1 {
			break
		}

		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if logger != nil {
			logger("retry %s (attempt %d): %v", req.URL, attempt+2, err)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return "", lastErr
}
