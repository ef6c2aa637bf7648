// Package scrape runs the fetch and extract pipeline behind a single scrape
// request.
package scrape

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/pagescrape"
	"github.com/google/uuid"
)

var _ pagescrape.Scraper = (*Service)(nil)

// Service validates a request, fetches the page with retries, extracts the
// requested data and optionally records the attempt.
type Service struct {
	Fetcher   pagescrape.Fetcher
	Extractor pagescrape.Extractor
	Config    pagescrape.Config

	// RateLimiter paces fetches per host. Optional.
	RateLimiter pagescrape.HostLimiter

	// History receives one record per validated request. Optional.
	History pagescrape.HistoryService

	// RetryDelays overrides the delays derived from Config.
	RetryDelays []time.Duration

	// Logf receives retry and history diagnostics. Optional.
	Logf LogFunc

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Scrape serves one request. Invalid input fails before any network call.
// Fetch failures surface as EFETCH once every attempt has failed.
func (s *Service) Scrape(ctx context.Context, req *pagescrape.ScrapeRequest) (*pagescrape.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	begin := s.now()
	result, html, err := s.scrape(ctx, req)
	s.record(ctx, req, html, err, begin)
	return result, err
}

func (s *Service) scrape(ctx context.Context, req *pagescrape.ScrapeRequest) (*pagescrape.Result, string, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, "", pagescrape.Errorf(pagescrape.EINVALID, "URL validation failed: %v", err)
	}

	if s.RateLimiter != nil {
		if err := s.RateLimiter.Wait(ctx, u.Hostname()); err != nil {
			return nil, "", pagescrape.Errorf(pagescrape.EFETCH, "waiting to fetch %s: %v", req.URL, err)
		}
	}

	fetchReq := s.fetchRequest(req)
	delays := s.RetryDelays
	if delays == nil {
		delays = FixedDelays(s.Config.MaxRetries, s.Config.RetryDelay)
	}

	html, err := FetchWithRetryDelays(ctx, fetchReq, s.Fetcher.Fetch, s.Logf, delays)
	if err != nil {
		if pagescrape.ErrorCode(err) == pagescrape.EINVALID {
			return nil, "", err
		}
		return nil, "", pagescrape.Errorf(pagescrape.EFETCH,
			"failed to retrieve content after %d attempts: %v", len(delays)+1, err)
	}

	ext, err := s.Extractor.Extract(html, req.Mode, req.Selector)
	if err != nil {
		return nil, html, err
	}

	return pagescrape.NewResult(req.URL, ext, s.now()), html, nil
}

// fetchRequest merges per-request overrides over the service defaults.
func (s *Service) fetchRequest(req *pagescrape.ScrapeRequest) pagescrape.FetchRequest {
	fr := pagescrape.FetchRequest{
		URL:       req.URL,
		UserAgent: s.Config.UserAgent,
		Timeout:   req.Config.TimeoutOr(s.Config.FetchTimeout),
		Proxy:     req.Config.ProxyFor(req.URL),
	}
	if c := req.Config; c != nil {
		if c.UserAgent != "" {
			fr.UserAgent = c.UserAgent
		}
		fr.Headers = c.Headers
		fr.Cookies = c.Cookies
	}
	return fr
}

func (s *Service) record(ctx context.Context, req *pagescrape.ScrapeRequest, html string, err error, begin time.Time) {
	if s.History == nil {
		return
	}

	rec := &pagescrape.ScrapeRecord{
		ID:         uuid.NewString(),
		ClientID:   req.ClientID,
		URL:        req.URL,
		Mode:       req.Mode,
		Success:    err == nil,
		ErrorCode:  pagescrape.ErrorCode(err),
		Bytes:      len(html),
		DurationMS: s.now().Sub(begin).Milliseconds(),
		CreatedAt:  begin,
	}
	if html != "" {
		rec.ContentHash = fmt.Sprintf("%016x", xxhash.Sum64String(html))
	}

	// History is best effort; a failed write never fails the scrape.
	if herr := s.History.CreateRecord(context.WithoutCancel(ctx), rec); herr != nil && s.Logf != nil {
		s.Logf("history: %v", herr)
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
