package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/pagescrape"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ pagescrape.HistoryService = (*HistoryService)(nil)

// HistoryService implements pagescrape.HistoryService using SQLite.
type HistoryService struct {
	db *DB
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(db *DB) *HistoryService {
	return &HistoryService{db: db}
}

const recordColumns = "id, client_id, url, mode, success, error_code, content_hash, bytes, duration_ms, created_at"

// CreateRecord stores a scrape record.
func (s *HistoryService) CreateRecord(ctx context.Context, r *pagescrape.ScrapeRecord) error {
	if err := r.Validate(); err != nil {
		return err
	}

	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.CreatedAt = r.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scrape_records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.ClientID, r.URL, string(r.Mode), r.Success, r.ErrorCode, r.ContentHash,
		r.Bytes, r.DurationMS, r.CreatedAt.Format(timeLayout))

	return err
}

// FindRecordByID retrieves a record by ID.
func (s *HistoryService) FindRecordByID(ctx context.Context, id string) (*pagescrape.ScrapeRecord, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM scrape_records WHERE id = ?", id)

	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pagescrape.Errorf(pagescrape.ENOTFOUND, "scrape record not found")
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// FindRecords retrieves records matching the filter, newest first.
func (s *HistoryService) FindRecords(ctx context.Context, filter pagescrape.RecordFilter) ([]*pagescrape.ScrapeRecord, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + recordColumns + " FROM scrape_records WHERE 1=1")

	if filter.ClientID != nil {
		query.WriteString(" AND client_id = ?")
		args = append(args, *filter.ClientID)
	}
	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}
	if filter.Success != nil {
		query.WriteString(" AND success = ?")
		args = append(args, *filter.Success)
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*pagescrape.ScrapeRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*pagescrape.ScrapeRecord, error) {
	var (
		r         pagescrape.ScrapeRecord
		mode      string
		createdAt string
	)
	if err := sc.Scan(&r.ID, &r.ClientID, &r.URL, &mode, &r.Success, &r.ErrorCode,
		&r.ContentHash, &r.Bytes, &r.DurationMS, &createdAt); err != nil {
		return nil, err
	}
	r.Mode = pagescrape.Mode(mode)

	var err error
	r.CreatedAt, err = parseTime(createdAt, "created_at")
	if err != nil {
		return nil, err
	}
	return &r, nil
}
