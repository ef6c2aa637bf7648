package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/pagescrape"
)

// Ensure LoggingExtractor implements pagescrape.Extractor.
var _ pagescrape.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor, logging each extraction and every
// notice it produced.
type LoggingExtractor struct {
	next   pagescrape.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next pagescrape.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor. Notices are logged at warn
// level.
func (e *LoggingExtractor) Extract(html string, mode pagescrape.Mode, selector string) (ext *pagescrape.Extraction, err error) {
	defer func(begin time.Time) {
		var notices int
		if ext != nil {
			notices = len(ext.Notices)
			for _, n := range ext.Notices {
				e.logger.Warn("extraction notice",
					"mode", string(mode),
					"code", string(n.Code),
					"category", string(n.Category),
					"message", n.Message,
				)
			}
		}
		e.logger.Debug("extract",
			"mode", string(mode),
			"selector", selector,
			"notices", notices,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(html, mode, selector)
}
