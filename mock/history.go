package mock

import (
	"context"

	"github.com/fwojciec/pagescrape"
)

var _ pagescrape.HistoryService = (*HistoryService)(nil)

// HistoryService is a mock implementation of pagescrape.HistoryService.
type HistoryService struct {
	CreateRecordFn   func(ctx context.Context, r *pagescrape.ScrapeRecord) error
	FindRecordByIDFn func(ctx context.Context, id string) (*pagescrape.ScrapeRecord, error)
	FindRecordsFn    func(ctx context.Context, filter pagescrape.RecordFilter) ([]*pagescrape.ScrapeRecord, error)
}

func (s *HistoryService) CreateRecord(ctx context.Context, r *pagescrape.ScrapeRecord) error {
	return s.CreateRecordFn(ctx, r)
}

func (s *HistoryService) FindRecordByID(ctx context.Context, id string) (*pagescrape.ScrapeRecord, error) {
	return s.FindRecordByIDFn(ctx, id)
}

func (s *HistoryService) FindRecords(ctx context.Context, filter pagescrape.RecordFilter) ([]*pagescrape.ScrapeRecord, error) {
	return s.FindRecordsFn(ctx, filter)
}
