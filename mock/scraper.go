package mock

import (
	"context"

	"github.com/fwojciec/pagescrape"
)

var _ pagescrape.Scraper = (*Scraper)(nil)

// Scraper is a mock implementation of pagescrape.Scraper.
type Scraper struct {
	ScrapeFn func(ctx context.Context, req *pagescrape.ScrapeRequest) (*pagescrape.Result, error)
}

func (s *Scraper) Scrape(ctx context.Context, req *pagescrape.ScrapeRequest) (*pagescrape.Result, error) {
	return s.ScrapeFn(ctx, req)
}
