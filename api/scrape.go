package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fwojciec/pagescrape"
	"github.com/fwojciec/pagescrape/export"
)

type scrapeInput struct {
	Body struct {
		_ struct{} `json:"-" additionalProperties:"true"`

		URL        string                   `json:"url" doc:"Absolute http or https URL to fetch" example:"https://example.com"`
		ScrapeType string                   `json:"scrape_type,omitempty" doc:"One of text, tables, links, images, full. Defaults to text."`
		Selector   string                   `json:"selector,omitempty" doc:"CSS selector limiting extraction to matching elements"`
		Config     *pagescrape.ScrapeConfig `json:"config,omitempty"`
	}
}

type scrapeOutput struct {
	Body struct {
		Success bool               `json:"success"`
		URL     string             `json:"url"`
		Data    *pagescrape.Result `json:"data"`
		Message string             `json:"message"`
	}
}

type defaultScrapeConfig struct {
	FollowLinks bool   `json:"follow_links"`
	MaxDepth    int    `json:"max_depth"`
	Timeout     int    `json:"timeout"`
	UserAgent   string `json:"user_agent"`
}

type rateLimitInfo struct {
	RequestsPerMinute int `json:"requests_per_minute"`
	Remaining         int `json:"remaining"`
}

type configOutput struct {
	Body struct {
		Success bool `json:"success"`
		Config  struct {
			AvailableScrapeTypes   []pagescrape.Mode   `json:"available_scrape_types"`
			RateLimit              rateLimitInfo       `json:"rate_limit"`
			SupportedOutputFormats []string            `json:"supported_output_formats"`
			DefaultConfig          defaultScrapeConfig `json:"default_config"`
		} `json:"config"`
	}
}

type rateLimitOutput struct {
	Body struct {
		RemainingRequests int `json:"remaining_requests"`
	}
}

func (s *server) registerScrapeHandlers(api huma.API) {
	type healthOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/api/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "scrape", Method: http.MethodPost, Path: "/api/scrape", Summary: "Scrape a URL and return structured data", Tags: []string{"Scrape"}},
		func(ctx context.Context, input *scrapeInput) (*scrapeOutput, error) {
			if err := s.admit(ctx); err != nil {
				return nil, err
			}

			mode, err := pagescrape.ParseMode(input.Body.ScrapeType)
			if err != nil {
				return nil, s.mapErr(err)
			}

			result, err := s.Scraper.Scrape(ctx, &pagescrape.ScrapeRequest{
				URL:      input.Body.URL,
				Mode:     mode,
				Selector: input.Body.Selector,
				Config:   input.Body.Config,
				ClientID: ClientID(ctx),
			})
			if err != nil {
				return nil, s.mapErr(err)
			}

			out := &scrapeOutput{}
			out.Body.Success = true
			out.Body.URL = input.Body.URL
			out.Body.Data = result
			out.Body.Message = "Scraping completed successfully"
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "get-config", Method: http.MethodGet, Path: "/api/config", Summary: "Describe the scraper configuration", Tags: []string{"Scrape"}},
		func(ctx context.Context, input *struct{}) (*configOutput, error) {
			out := &configOutput{}
			out.Body.Success = true
			c := &out.Body.Config
			c.AvailableScrapeTypes = pagescrape.Modes()
			c.RateLimit = rateLimitInfo{
				RequestsPerMinute: s.Admitter.Limit(),
				Remaining:         s.Admitter.Remaining(ClientID(ctx)),
			}
			c.SupportedOutputFormats = s.exportFormats()
			c.DefaultConfig = defaultScrapeConfig{
				MaxDepth:  1,
				Timeout:   int(s.Config.FetchTimeout.Seconds()),
				UserAgent: s.Config.UserAgent,
			}
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "get-rate-limit", Method: http.MethodGet, Path: "/api/rate-limit", Summary: "Check the caller's remaining requests", Tags: []string{"Scrape"}},
		func(ctx context.Context, input *struct{}) (*rateLimitOutput, error) {
			out := &rateLimitOutput{}
			out.Body.RemainingRequests = s.Admitter.Remaining(ClientID(ctx))
			return out, nil
		})
}

// exportFormats lists the formats the export endpoint will accept.
func (s *server) exportFormats() []string {
	var formats []string
	for _, f := range export.Formats() {
		if f == export.FormatMarkdown && s.Converter == nil {
			continue
		}
		formats = append(formats, f)
	}
	return formats
}
