package pagescrape

import (
	"context"
	"time"
)

// FetchRequest describes a single retrieval of a web page.
type FetchRequest struct {
	URL       string
	UserAgent string
	Headers   map[string]string
	Cookies   map[string]string

	// Proxy is the proxy URL for this request. Empty means direct.
	Proxy string

	// Timeout bounds a single attempt. Zero means the fetcher's default.
	Timeout time.Duration
}

// Fetcher retrieves the HTML of a URL.
type Fetcher interface {
	// Fetch performs one attempt. Non-success responses are errors.
	Fetch(ctx context.Context, req FetchRequest) (html string, err error)
}
