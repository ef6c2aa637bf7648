package pagescrape

import (
	"net/url"
	"regexp"
	"strings"
	"time"
)

// MaxSelectorLength bounds the size of a CSS selector accepted from callers.
const MaxSelectorLength = 1000

var (
	hostPattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?)*$`)

	unsafeSelectorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<\s*script`),
		regexp.MustCompile(`(?i)javascript:`),
		regexp.MustCompile(`(?i)@import`),
		regexp.MustCompile(`(?i)expression\(`),
	}
)

// ScrapeRequest describes a single page to fetch and extract.
type ScrapeRequest struct {
	URL      string        `json:"url"`
	Mode     Mode          `json:"scrape_type"`
	Selector string        `json:"selector,omitempty"`
	Config   *ScrapeConfig `json:"config,omitempty"`

	// ClientID identifies the caller for history records. It is never read
	// from request bodies.
	ClientID string `json:"-"`
}

// Validate returns an error if the request cannot be served.
// No network call happens before Validate succeeds.
func (r *ScrapeRequest) Validate() error {
	if err := ValidateURL(r.URL); err != nil {
		return err
	}
	if !r.Mode.Valid() {
		return Errorf(EINVALID, "unsupported scrape type: %s", r.Mode)
	}
	if err := ValidateSelector(r.Selector); err != nil {
		return err
	}
	if r.Config != nil {
		return r.Config.Validate()
	}
	return nil
}

// ScrapeConfig holds per-request overrides for the fetch step.
//
// FollowLinks and MaxDepth are accepted for compatibility with existing
// clients but nothing acts on them: the service never follows links.
type ScrapeConfig struct {
	FollowLinks bool              `json:"follow_links,omitempty"`
	MaxDepth    int               `json:"max_depth,omitempty"`
	Timeout     int               `json:"timeout,omitempty"` // seconds
	UserAgent   string            `json:"user_agent,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Cookies     map[string]string `json:"cookies,omitempty"`
	Proxies     map[string]string `json:"proxies,omitempty"`
}

// Validate returns an error if the config contains invalid fields.
func (c *ScrapeConfig) Validate() error {
	if c.Timeout < 0 {
		return Errorf(EINVALID, "timeout must not be negative")
	}
	if c.MaxDepth < 0 {
		return Errorf(EINVALID, "max_depth must not be negative")
	}
	for scheme, raw := range c.Proxies {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return Errorf(EINVALID, "invalid proxy for %s: %s", scheme, raw)
		}
	}
	return nil
}

// TimeoutOr returns the configured timeout, or def when none is set.
func (c *ScrapeConfig) TimeoutOr(def time.Duration) time.Duration {
	if c == nil || c.Timeout <= 0 {
		return def
	}
	return time.Duration(c.Timeout) * time.Second
}

// ProxyFor returns the proxy configured for the scheme of rawURL, if any.
func (c *ScrapeConfig) ProxyFor(rawURL string) string {
	if c == nil || len(c.Proxies) == 0 {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return c.Proxies[u.Scheme]
}

// ValidateURL returns an EINVALID error unless raw is an absolute http or
// https URL with a plausible host name.
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return Errorf(EINVALID, "URL required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Errorf(EINVALID, "URL validation failed: %v", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Errorf(EINVALID, "invalid URL structure: %s", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Errorf(EINVALID, "URL must use HTTP or HTTPS scheme: %s", raw)
	}
	if !hostPattern.MatchString(u.Hostname()) {
		return Errorf(EINVALID, "invalid domain in URL: %s", raw)
	}
	return nil
}

// ValidateSelector returns an EINVALID error for oversized selectors and
// selectors containing script or stylesheet injection patterns.
// The empty selector is valid.
func ValidateSelector(selector string) error {
	if selector == "" {
		return nil
	}
	if len(selector) > MaxSelectorLength {
		return Errorf(EINVALID, "selector is too long")
	}
	for _, re := range unsafeSelectorPatterns {
		if re.MatchString(selector) {
			return Errorf(EINVALID, "selector contains potentially dangerous content: %s", selector)
		}
	}
	return nil
}
