package mock

import "github.com/fwojciec/pagescrape"

var _ pagescrape.Admitter = (*Admitter)(nil)

// Admitter is a mock implementation of pagescrape.Admitter.
type Admitter struct {
	AdmitFn     func(clientID string) bool
	RemainingFn func(clientID string) int
	LimitFn     func() int
}

func (a *Admitter) Admit(clientID string) bool {
	return a.AdmitFn(clientID)
}

func (a *Admitter) Remaining(clientID string) int {
	return a.RemainingFn(clientID)
}

func (a *Admitter) Limit() int {
	return a.LimitFn()
}
