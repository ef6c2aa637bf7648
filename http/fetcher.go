// Package http provides the net/http implementation of pagescrape.Fetcher.
package http

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/fwojciec/pagescrape"
)

// DefaultFetchTimeout bounds a single attempt when neither the request nor
// the fetcher specify one.
const DefaultFetchTimeout = 30 * time.Second

// DefaultMaxBodyBytes caps the decoded response body.
const DefaultMaxBodyBytes int64 = 10 << 20

var _ pagescrape.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML with plain HTTP GET requests. It does not execute
// JavaScript.
type Fetcher struct {
	transport    *http.Transport
	timeout      time.Duration
	userAgent    string
	maxBodyBytes int64

	// proxied holds one client per proxy URL so connections are reused.
	mu      sync.Mutex
	direct  *http.Client
	proxied map[string]*http.Client
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the default per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent sent when a request does not override it.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodyBytes caps the decoded body size.
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodyBytes = n
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		userAgent:    pagescrape.DefaultUserAgent,
		maxBodyBytes: DefaultMaxBodyBytes,
		proxied:      make(map[string]*http.Client),
	}
	for _, opt := range opts {
		opt(f)
	}

	f.transport = http.DefaultTransport.(*http.Transport).Clone()
	f.direct = &http.Client{Transport: f.transport}

	return f
}

// Fetch performs a single GET and returns the decoded body.
// Any status outside 2xx is an error.
func (f *Fetcher) Fetch(ctx context.Context, req pagescrape.FetchRequest) (string, error) {
	client, err := f.client(req.Proxy)
	if err != nil {
		return "", err
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = f.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return "", err
	}

	ua := req.UserAgent
	if ua == "" {
		ua = f.userAgent
	}
	httpReq.Header.Set("User-Agent", ua)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.5")
	httpReq.Header.Set("Accept-Encoding", "gzip, deflate, br")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	for _, name := range slices.Sorted(maps.Keys(req.Cookies)) {
		httpReq.AddCookie(&http.Cookie{Name: name, Value: req.Cookies[name]})
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, req.URL)
	}

	body, err := f.readBody(resp)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (f *Fetcher) client(proxy string) (*http.Client, error) {
	if proxy == "" {
		return f.direct, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.proxied[proxy]; ok {
		return c, nil
	}

	u, err := url.Parse(proxy)
	if err != nil || u.Host == "" {
		return nil, pagescrape.Errorf(pagescrape.EINVALID, "invalid proxy: %s", proxy)
	}
	t := f.transport.Clone()
	t.Proxy = http.ProxyURL(u)
	c := &http.Client{Transport: t}
	f.proxied[proxy] = c
	return c, nil
}

// readBody decodes the body according to Content-Encoding and enforces
// the size cap.
func (f *Fetcher) readBody(resp *http.Response) ([]byte, error) {
	reader := io.Reader(resp.Body)

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl, err := deflateReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("deflate decode: %w", err)
		}
		defer fl.Close()
		reader = fl
	}

	body, err := io.ReadAll(io.LimitReader(reader, f.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBodyBytes {
		return nil, fmt.Errorf("response body exceeds limit of %d bytes", f.maxBodyBytes)
	}
	return body, nil
}

// deflateReader decodes an HTTP "deflate" body. The encoding is zlib-wrapped
// DEFLATE, but some servers send raw DEFLATE, so a body without a valid zlib
// header is read as raw.
func deflateReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if len(header) == 2 && header[0]&0x0f == 8 && (uint16(header[0])<<8|uint16(header[1]))%31 == 0 {
		return zlib.NewReader(br)
	}
	return flate.NewReader(br), nil
}
