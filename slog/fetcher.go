// Package slog provides logging decorators for pagescrape services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pagescrape"
)

// Ensure LoggingFetcher implements pagescrape.Fetcher.
var _ pagescrape.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with debug logging.
type LoggingFetcher struct {
	next   pagescrape.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next pagescrape.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Fetch(ctx context.Context, req pagescrape.FetchRequest) (html string, err error) {
	defer func(begin time.Time) {
		f.logger.Debug("fetch",
			"url", req.URL,
			"proxied", req.Proxy != "",
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, req)
}
