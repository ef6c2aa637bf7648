package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pagescrape"
)

// Ensure LoggingHistoryService implements pagescrape.HistoryService.
var _ pagescrape.HistoryService = (*LoggingHistoryService)(nil)

// LoggingHistoryService wraps a HistoryService with debug logging.
type LoggingHistoryService struct {
	next   pagescrape.HistoryService
	logger *slog.Logger
}

// NewLoggingHistoryService creates a new LoggingHistoryService.
func NewLoggingHistoryService(next pagescrape.HistoryService, logger *slog.Logger) *LoggingHistoryService {
	return &LoggingHistoryService{next: next, logger: logger}
}

func (s *LoggingHistoryService) CreateRecord(ctx context.Context, r *pagescrape.ScrapeRecord) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("history create",
			"id", r.ID,
			"url", r.URL,
			"success", r.Success,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateRecord(ctx, r)
}

func (s *LoggingHistoryService) FindRecordByID(ctx context.Context, id string) (r *pagescrape.ScrapeRecord, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("history find",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindRecordByID(ctx, id)
}

func (s *LoggingHistoryService) FindRecords(ctx context.Context, filter pagescrape.RecordFilter) (records []*pagescrape.ScrapeRecord, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("history list",
			"count", len(records),
			"limit", filter.Limit,
			"offset", filter.Offset,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindRecords(ctx, filter)
}
