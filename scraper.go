package pagescrape

import "context"

// Scraper runs the full fetch and extract pipeline for one request.
type Scraper interface {
	Scrape(ctx context.Context, req *ScrapeRequest) (*Result, error)
}

// HostLimiter paces outbound requests per target host.
type HostLimiter interface {
	// Wait blocks until a request to host may proceed or ctx is done.
	Wait(ctx context.Context, host string) error
}
