package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fwojciec/pagescrape"
)

// record is the wire shape of a pagescrape.ScrapeRecord.
type record struct {
	ID          string          `json:"id"`
	URL         string          `json:"url"`
	ScrapeType  pagescrape.Mode `json:"scrape_type"`
	Success     bool            `json:"success"`
	Error       string          `json:"error,omitempty"`
	ContentHash string          `json:"content_hash,omitempty"`
	Bytes       int             `json:"bytes"`
	DurationMS  int64           `json:"duration_ms"`
	CreatedAt   time.Time       `json:"created_at"`
}

func newRecord(r *pagescrape.ScrapeRecord) record {
	return record{
		ID:          r.ID,
		URL:         r.URL,
		ScrapeType:  r.Mode,
		Success:     r.Success,
		Error:       r.ErrorCode,
		ContentHash: r.ContentHash,
		Bytes:       r.Bytes,
		DurationMS:  r.DurationMS,
		CreatedAt:   r.CreatedAt,
	}
}

type listHistoryInput struct {
	URL     string `query:"url" doc:"Only records for this URL"`
	Success string `query:"success" enum:"true,false" doc:"Only successful or failed records"`
	Limit   int    `query:"limit" default:"20" minimum:"1" maximum:"100"`
	Offset  int    `query:"offset" minimum:"0"`
}

type listHistoryOutput struct {
	Body struct {
		Success bool     `json:"success"`
		Records []record `json:"records"`
	}
}

type getHistoryOutput struct {
	Body struct {
		Success bool   `json:"success"`
		Record  record `json:"record"`
	}
}

// History is scoped to the calling client; other clients' records are
// reported as not found.
func (s *server) registerHistoryHandlers(api huma.API) {
	huma.Register(api, huma.Operation{OperationID: "list-history", Method: http.MethodGet, Path: "/api/history", Summary: "List the caller's recent scrapes", Tags: []string{"History"}},
		func(ctx context.Context, input *listHistoryInput) (*listHistoryOutput, error) {
			client := ClientID(ctx)
			filter := pagescrape.RecordFilter{
				ClientID: &client,
				Limit:    input.Limit,
				Offset:   input.Offset,
			}
			if input.URL != "" {
				filter.URL = &input.URL
			}
			if input.Success != "" {
				ok, err := strconv.ParseBool(input.Success)
				if err != nil {
					return nil, s.mapErr(pagescrape.Errorf(pagescrape.EINVALID, "invalid success filter: %s", input.Success))
				}
				filter.Success = &ok
			}

			records, err := s.History.FindRecords(ctx, filter)
			if err != nil {
				return nil, s.mapErr(err)
			}

			out := &listHistoryOutput{}
			out.Body.Success = true
			out.Body.Records = make([]record, 0, len(records))
			for _, r := range records {
				out.Body.Records = append(out.Body.Records, newRecord(r))
			}
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "get-history", Method: http.MethodGet, Path: "/api/history/{id}", Summary: "Get one of the caller's scrapes", Tags: []string{"History"}},
		func(ctx context.Context, input *struct {
			ID string `path:"id"`
		}) (*getHistoryOutput, error) {
			r, err := s.History.FindRecordByID(ctx, input.ID)
			if err != nil {
				return nil, s.mapErr(err)
			}
			if r.ClientID != ClientID(ctx) {
				return nil, s.mapErr(pagescrape.Errorf(pagescrape.ENOTFOUND, "scrape record not found"))
			}

			out := &getHistoryOutput{}
			out.Body.Success = true
			out.Body.Record = newRecord(r)
			return out, nil
		})
}
