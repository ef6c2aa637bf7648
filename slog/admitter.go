package slog

import (
	"log/slog"

	"github.com/fwojciec/pagescrape"
)

// Ensure LoggingAdmitter implements pagescrape.Admitter.
var _ pagescrape.Admitter = (*LoggingAdmitter)(nil)

// LoggingAdmitter wraps an Admitter and logs rejected clients.
type LoggingAdmitter struct {
	next   pagescrape.Admitter
	logger *slog.Logger
}

// NewLoggingAdmitter creates a new LoggingAdmitter.
func NewLoggingAdmitter(next pagescrape.Admitter, logger *slog.Logger) *LoggingAdmitter {
	return &LoggingAdmitter{next: next, logger: logger}
}

// Admit delegates to the wrapped admitter.
func (a *LoggingAdmitter) Admit(clientID string) bool {
	ok := a.next.Admit(clientID)
	if !ok {
		a.logger.Warn("rate limit exceeded",
			"client", clientID,
			"limit", a.next.Limit(),
		)
	}
	return ok
}

// Remaining delegates to the wrapped admitter.
func (a *LoggingAdmitter) Remaining(clientID string) int {
	return a.next.Remaining(clientID)
}

// Limit delegates to the wrapped admitter.
func (a *LoggingAdmitter) Limit() int {
	return a.next.Limit()
}
