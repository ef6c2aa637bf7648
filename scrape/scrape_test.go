package scrape_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/pagescrape"
	"github.com/fwojciec/pagescrape/mock"
	"github.com/fwojciec/pagescrape/scrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func newService(fetcher *mock.Fetcher, extractor *mock.Extractor) *scrape.Service {
	return &scrape.Service{
		Fetcher:     fetcher,
		Extractor:   extractor,
		Config:      pagescrape.DefaultConfig(),
		RetryDelays: []time.Duration{0, 0},
		Now:         func() time.Time { return fixedNow },
	}
}

func textExtractor(text string) *mock.Extractor {
	return &mock.Extractor{
		ExtractFn: func(_ string, _ pagescrape.Mode, _ string) (*pagescrape.Extraction, error) {
			return &pagescrape.Extraction{Data: pagescrape.TextPayload{text}}, nil
		},
	}
}

func TestService_Scrape(t *testing.T) {
	t.Parallel()

	t.Run("fetches extracts and packages result", func(t *testing.T) {
		t.Parallel()

		var gotReq pagescrape.FetchRequest
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, req pagescrape.FetchRequest) (string, error) {
				gotReq = req
				return "<p>hello</p>", nil
			},
		}
		var gotHTML, gotSelector string
		var gotMode pagescrape.Mode
		extractor := &mock.Extractor{
			ExtractFn: func(html string, mode pagescrape.Mode, selector string) (*pagescrape.Extraction, error) {
				gotHTML, gotMode, gotSelector = html, mode, selector
				return &pagescrape.Extraction{Data: pagescrape.TextPayload{"hello"}}, nil
			},
		}
		svc := newService(fetcher, extractor)

		res, err := svc.Scrape(context.Background(), &pagescrape.ScrapeRequest{
			URL:      "https://example.com/page",
			Mode:     pagescrape.ModeText,
			Selector: "p",
		})

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/page", res.URL)
		assert.Equal(t, pagescrape.ModeText, res.Mode)
		assert.Equal(t, fixedNow, res.Timestamp)
		assert.Equal(t, pagescrape.TextPayload{"hello"}, res.Data)

		assert.Equal(t, "https://example.com/page", gotReq.URL)
		assert.Equal(t, pagescrape.DefaultUserAgent, gotReq.UserAgent)
		assert.Equal(t, 30*time.Second, gotReq.Timeout)
		assert.Equal(t, "<p>hello</p>", gotHTML)
		assert.Equal(t, pagescrape.ModeText, gotMode)
		assert.Equal(t, "p", gotSelector)
	})

	t.Run("applies per-request config", func(t *testing.T) {
		t.Parallel()

		var gotReq pagescrape.FetchRequest
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, req pagescrape.FetchRequest) (string, error) {
				gotReq = req
				return "<p></p>", nil
			},
		}
		svc := newService(fetcher, textExtractor(""))

		_, err := svc.Scrape(context.Background(), &pagescrape.ScrapeRequest{
			URL:  "https://example.com",
			Mode: pagescrape.ModeText,
			Config: &pagescrape.ScrapeConfig{
				Timeout:   5,
				UserAgent: "bot/2",
				Headers:   map[string]string{"X-A": "1"},
				Cookies:   map[string]string{"c": "v"},
				Proxies:   map[string]string{"https": "http://proxy:3128"},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, gotReq.Timeout)
		assert.Equal(t, "bot/2", gotReq.UserAgent)
		assert.Equal(t, map[string]string{"X-A": "1"}, gotReq.Headers)
		assert.Equal(t, map[string]string{"c": "v"}, gotReq.Cookies)
		assert.Equal(t, "http://proxy:3128", gotReq.Proxy)
	})

	t.Run("rejects invalid input before fetching", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(context.Context, pagescrape.FetchRequest) (string, error) {
				t.Fatal("fetch must not be called")
				return "", nil
			},
		}
		svc := newService(fetcher, textExtractor(""))

		for _, req := range []*pagescrape.ScrapeRequest{
			{URL: "ftp://example.com", Mode: pagescrape.ModeText},
			{URL: "https://example.com", Mode: pagescrape.ModeText, Selector: "<script>"},
			{URL: "https://example.com", Mode: "nope"},
		} {
			_, err := svc.Scrape(context.Background(), req)
			assert.Equal(t, pagescrape.EINVALID, pagescrape.ErrorCode(err))
		}
	})

	t.Run("retries then succeeds", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetcher := &mock.Fetcher{
			FetchFn: func(context.Context, pagescrape.FetchRequest) (string, error) {
				calls++
				if calls < 3 {
					return "", errors.New("connection reset")
				}
				return "<p>ok</p>", nil
			},
		}
		var logs []string
		svc := newService(fetcher, textExtractor("ok"))
		svc.Logf = func(format string, args ...any) {
			logs = append(logs, format)
		}

		res, err := svc.Scrape(context.Background(), &pagescrape.ScrapeRequest{URL: "https://example.com", Mode: pagescrape.ModeText})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Len(t, logs, 2)
		assert.Equal(t, pagescrape.TextPayload{"ok"}, res.Data)
	})

	t.Run("exhausted retries surface as fetch error", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetcher := &mock.Fetcher{
			FetchFn: func(context.Context, pagescrape.FetchRequest) (string, error) {
				calls++
				return "", errors.New("HTTP 503")
			},
		}
		svc := newService(fetcher, textExtractor(""))

		_, err := svc.Scrape(context.Background(), &pagescrape.ScrapeRequest{URL: "https://example.com", Mode: pagescrape.ModeText})

		require.Error(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, pagescrape.EFETCH, pagescrape.ErrorCode(err))
		assert.Contains(t, pagescrape.ErrorMessage(err), "after 3 attempts")
		assert.Contains(t, pagescrape.ErrorMessage(err), "HTTP 503")
	})

	t.Run("derives attempts from config", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetcher := &mock.Fetcher{
			FetchFn: func(context.Context, pagescrape.FetchRequest) (string, error) {
				calls++
				return "", errors.New("down")
			},
		}
		svc := newService(fetcher, textExtractor(""))
		svc.RetryDelays = nil
		svc.Config.MaxRetries = 2
		svc.Config.RetryDelay = time.Millisecond

		_, err := svc.Scrape(context.Background(), &pagescrape.ScrapeRequest{URL: "https://example.com", Mode: pagescrape.ModeText})

		require.Error(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("invalid fetch errors are not retried", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetcher := &mock.Fetcher{
			FetchFn: func(context.Context, pagescrape.FetchRequest) (string, error) {
				calls++
				return "", pagescrape.Errorf(pagescrape.EINVALID, "invalid proxy")
			},
		}
		svc := newService(fetcher, textExtractor(""))

		_, err := svc.Scrape(context.Background(), &pagescrape.ScrapeRequest{URL: "https://example.com", Mode: pagescrape.ModeText})

		assert.Equal(t, pagescrape.EINVALID, pagescrape.ErrorCode(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("waits on the host limiter", func(t *testing.T) {
		t.Parallel()

		var hosts []string
		svc := newService(&mock.Fetcher{
			FetchFn: func(context.Context, pagescrape.FetchRequest) (string, error) { return "<p></p>", nil },
		}, textExtractor(""))
		svc.RateLimiter = hostLimiterFunc(func(_ context.Context, host string) error {
			hosts = append(hosts, host)
			return nil
		})

		_, err := svc.Scrape(context.Background(), &pagescrape.ScrapeRequest{URL: "https://example.com:8443/x", Mode: pagescrape.ModeText})

		require.NoError(t, err)
		assert.Equal(t, []string{"example.com"}, hosts)
	})
}

func TestService_Scrape_History(t *testing.T) {
	t.Parallel()

	t.Run("records successful scrape", func(t *testing.T) {
		t.Parallel()

		var got *pagescrape.ScrapeRecord
		svc := newService(&mock.Fetcher{
			FetchFn: func(context.Context, pagescrape.FetchRequest) (string, error) { return "<p>body</p>", nil },
		}, textExtractor("body"))
		svc.History = &mock.HistoryService{
			CreateRecordFn: func(_ context.Context, r *pagescrape.ScrapeRecord) error {
				got = r
				return nil
			},
		}

		_, err := svc.Scrape(context.Background(), &pagescrape.ScrapeRequest{
			URL:      "https://example.com",
			Mode:     pagescrape.ModeText,
			ClientID: "1.2.3.4",
		})

		require.NoError(t, err)
		require.NotNil(t, got)
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, "1.2.3.4", got.ClientID)
		assert.Equal(t, "https://example.com", got.URL)
		assert.Equal(t, pagescrape.ModeText, got.Mode)
		assert.True(t, got.Success)
		assert.Empty(t, got.ErrorCode)
		assert.Equal(t, len("<p>body</p>"), got.Bytes)
		assert.NotEmpty(t, got.ContentHash)
		assert.NotContains(t, got.ContentHash, "body")
		assert.Equal(t, fixedNow, got.CreatedAt)
	})

	t.Run("records failed scrape", func(t *testing.T) {
		t.Parallel()

		var got *pagescrape.ScrapeRecord
		svc := newService(&mock.Fetcher{
			FetchFn: func(context.Context, pagescrape.FetchRequest) (string, error) { return "", errors.New("down") },
		}, textExtractor(""))
		svc.History = &mock.HistoryService{
			CreateRecordFn: func(_ context.Context, r *pagescrape.ScrapeRecord) error {
				got = r
				return nil
			},
		}

		_, err := svc.Scrape(context.Background(), &pagescrape.ScrapeRequest{URL: "https://example.com", Mode: pagescrape.ModeLinks})

		require.Error(t, err)
		require.NotNil(t, got)
		assert.False(t, got.Success)
		assert.Equal(t, pagescrape.EFETCH, got.ErrorCode)
		assert.Empty(t, got.ContentHash)
	})

	t.Run("history failure does not fail the scrape", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var logged []string
		svc := newService(&mock.Fetcher{
			FetchFn: func(context.Context, pagescrape.FetchRequest) (string, error) { return "<p></p>", nil },
		}, textExtractor(""))
		svc.History = &mock.HistoryService{
			CreateRecordFn: func(context.Context, *pagescrape.ScrapeRecord) error {
				return errors.New("disk full")
			},
		}
		svc.Logf = func(format string, args ...any) {
			mu.Lock()
			defer mu.Unlock()
			logged = append(logged, format)
		}

		_, err := svc.Scrape(context.Background(), &pagescrape.ScrapeRequest{URL: "https://example.com", Mode: pagescrape.ModeText})

		require.NoError(t, err)
		assert.Len(t, logged, 1)
	})

	t.Run("invalid requests are not recorded", func(t *testing.T) {
		t.Parallel()

		svc := newService(&mock.Fetcher{}, textExtractor(""))
		svc.History = &mock.HistoryService{
			CreateRecordFn: func(context.Context, *pagescrape.ScrapeRecord) error {
				t.Fatal("must not record invalid requests")
				return nil
			},
		}

		_, err := svc.Scrape(context.Background(), &pagescrape.ScrapeRequest{URL: "bad", Mode: pagescrape.ModeText})
		assert.Equal(t, pagescrape.EINVALID, pagescrape.ErrorCode(err))
	})
}

func TestFixedDelays(t *testing.T) {
	t.Parallel()

	assert.Nil(t, scrape.FixedDelays(0, time.Second))
	assert.Nil(t, scrape.FixedDelays(1, time.Second))
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, scrape.FixedDelays(3, 2*time.Second))
}

func TestFetchWithRetryDelays_ContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	fetch := func(context.Context, pagescrape.FetchRequest) (string, error) {
		calls++
		cancel()
		return "", errors.New("fail")
	}

	_, err := scrape.FetchWithRetryDelays(ctx, pagescrape.FetchRequest{URL: "https://example.com"}, fetch, nil, []time.Duration{time.Hour})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

type hostLimiterFunc func(ctx context.Context, host string) error

func (f hostLimiterFunc) Wait(ctx context.Context, host string) error {
	return f(ctx, host)
}
