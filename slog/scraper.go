package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pagescrape"
)

// Ensure LoggingScraper implements pagescrape.Scraper.
var _ pagescrape.Scraper = (*LoggingScraper)(nil)

// LoggingScraper wraps a Scraper and logs one line per request. The level
// follows the outcome: fetch failures are errors, bad input is a warning.
type LoggingScraper struct {
	next   pagescrape.Scraper
	logger *slog.Logger
}

// NewLoggingScraper creates a new LoggingScraper.
func NewLoggingScraper(next pagescrape.Scraper, logger *slog.Logger) *LoggingScraper {
	return &LoggingScraper{next: next, logger: logger}
}

// Scrape delegates to the wrapped scraper and logs the outcome.
func (s *LoggingScraper) Scrape(ctx context.Context, req *pagescrape.ScrapeRequest) (result *pagescrape.Result, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"url", req.URL,
			"mode", string(req.Mode),
			"client", req.ClientID,
			"duration", time.Since(begin),
		}
		switch code := pagescrape.ErrorCode(err); {
		case err == nil:
			s.logger.Info("scrape", append(attrs, "degraded", result.Degraded())...)
		case code == pagescrape.EINVALID:
			s.logger.Warn("scrape rejected", append(attrs, "err", pagescrape.ErrorMessage(err))...)
		default:
			s.logger.Error("scrape failed", append(attrs, "code", code, "err", err)...)
		}
	}(time.Now())
	return s.next.Scrape(ctx, req)
}
