package pagescrape

import "time"

// DefaultUserAgent is sent when a request does not override the user agent.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Config holds the tunables consumed by the admission controller and the
// scrape pipeline.
type Config struct {
	// RateLimit is the number of admitted requests per client per Window.
	RateLimit int
	Window    time.Duration

	FetchTimeout time.Duration
	// MaxRetries is the total number of fetch attempts, including the first.
	MaxRetries int
	RetryDelay time.Duration
	UserAgent  string

	// HostRPS limits outbound requests per target host. Zero disables it.
	HostRPS float64

	// MaxBodyBytes caps how much of a response body is read.
	MaxBodyBytes int64
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		RateLimit:    10,
		Window:       time.Minute,
		FetchTimeout: 30 * time.Second,
		MaxRetries:   3,
		RetryDelay:   2 * time.Second,
		UserAgent:    DefaultUserAgent,
		HostRPS:      2,
		MaxBodyBytes: 10 << 20,
	}
}
