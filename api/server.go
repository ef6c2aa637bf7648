// Package api serves the scraping service over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/fwojciec/pagescrape"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RetryAfter is the Retry-After value, in seconds, sent with 429 responses.
const RetryAfter = "60"

// Services are the domain collaborators behind the HTTP API.
type Services struct {
	Scraper  pagescrape.Scraper
	Admitter pagescrape.Admitter
	Config   pagescrape.Config

	// History enables the /api/history endpoints. Optional.
	History pagescrape.HistoryService

	// Converter enables the markdown export format. Optional.
	Converter pagescrape.Converter

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

type server struct {
	Services
	logger *slog.Logger
}

var envelopeOnce sync.Once

// NewServer returns the HTTP handler for the API.
func NewServer(svc Services) http.Handler {
	envelopeOnce.Do(func() {
		huma.NewError = newErrorResponse
	})

	s := &server{Services: svc, logger: svc.Logger}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger(s.logger))
	router.Use(middleware.Recoverer)
	router.Use(identifyClient)

	cfg := huma.DefaultConfig("pagescrape", "1.0.0")
	cfg.CreateHooks = nil
	api := humachi.New(router, cfg)

	s.registerScrapeHandlers(api)
	s.registerExportHandlers(api)
	if s.History != nil {
		s.registerHistoryHandlers(api)
	}

	return router
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Code       string `json:"error"`
	StatusCode int    `json:"status_code"`
}

func (e *ErrorResponse) Error() string  { return e.Message }
func (e *ErrorResponse) GetStatus() int { return e.StatusCode }

func newErrorResponse(status int, msg string, errs ...error) huma.StatusError {
	for _, err := range errs {
		if err != nil {
			msg += "; " + err.Error()
		}
	}
	return &ErrorResponse{
		Message:    msg,
		Code:       codeForStatus(status),
		StatusCode: status,
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return pagescrape.EINVALID
	case http.StatusNotFound:
		return pagescrape.ENOTFOUND
	case http.StatusTooManyRequests:
		return pagescrape.ERATELIMIT
	case http.StatusBadGateway:
		return pagescrape.EFETCH
	}
	return pagescrape.EINTERNAL
}

// mapErr translates a domain error into an HTTP error.
func (s *server) mapErr(err error) error {
	if err == nil {
		return nil
	}
	msg := pagescrape.ErrorMessage(err)
	switch pagescrape.ErrorCode(err) {
	case pagescrape.EINVALID:
		return huma.Error400BadRequest(msg)
	case pagescrape.ENOTFOUND:
		return huma.Error404NotFound(msg)
	case pagescrape.ERATELIMIT:
		return huma.ErrorWithHeaders(huma.Error429TooManyRequests(msg), http.Header{
			"Retry-After": {RetryAfter},
		})
	case pagescrape.EFETCH:
		return huma.Error502BadGateway(msg)
	}
	s.logger.Error("internal error", "err", err)
	return huma.Error500InternalServerError(msg)
}

// admit consumes one admission slot for the calling client.
func (s *server) admit(ctx context.Context) error {
	if s.Admitter.Admit(ClientID(ctx)) {
		return nil
	}
	return s.mapErr(pagescrape.Errorf(pagescrape.ERATELIMIT, "Rate limit exceeded. Please try again later."))
}
