package pagescrape

import (
	"context"
	"time"
)

// ScrapeRecord is an audit entry for one scrape attempt. It stores a hash of
// the fetched document, never the document itself.
type ScrapeRecord struct {
	ID          string
	ClientID    string
	URL         string
	Mode        Mode
	Success     bool
	ErrorCode   string
	ContentHash string
	Bytes       int
	DurationMS  int64
	CreatedAt   time.Time
}

// Validate returns an error if the record is missing required fields.
func (r *ScrapeRecord) Validate() error {
	if r.URL == "" {
		return Errorf(EINVALID, "record URL required")
	}
	if !r.Mode.Valid() {
		return Errorf(EINVALID, "record mode invalid: %q", r.Mode)
	}
	return nil
}

// RecordFilter narrows a history query. Zero values match everything.
type RecordFilter struct {
	ClientID *string
	URL      *string
	Success  *bool

	Limit  int
	Offset int
}

// HistoryService persists scrape records.
type HistoryService interface {
	// CreateRecord stores r, assigning ID and CreatedAt when unset.
	CreateRecord(ctx context.Context, r *ScrapeRecord) error

	// FindRecordByID returns ENOTFOUND if no record has the given ID.
	FindRecordByID(ctx context.Context, id string) (*ScrapeRecord, error)

	// FindRecords returns matching records, newest first.
	FindRecords(ctx context.Context, filter RecordFilter) ([]*ScrapeRecord, error)
}
