package pagescrape

// Admitter decides whether a client may perform another scrape within its
// sliding window. Implementations must be safe for concurrent use.
type Admitter interface {
	// Admit records an attempt for clientID and reports whether it is allowed.
	// Rejected attempts are not recorded.
	Admit(clientID string) bool

	// Remaining reports how many attempts clientID has left in the current
	// window without recording one.
	Remaining(clientID string) int

	// Limit returns the per-window maximum.
	Limit() int
}
