// Package trafilatura implements pagescrape.TextExtractor with go-trafilatura.
package trafilatura

import (
	"strings"

	"github.com/fwojciec/pagescrape"
	"github.com/markusmobius/go-trafilatura"
)

var _ pagescrape.TextExtractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract the main content text.
type Extractor struct {
	opts trafilatura.Options
}

// NewExtractor creates a new Extractor. Fallback extractors are enabled so
// that pages trafilatura alone cannot handle still yield content.
func NewExtractor() *Extractor {
	return &Extractor{
		opts: trafilatura.Options{
			EnableFallback: true,
		},
	}
}

// ExtractText returns the main content as plain text, or "" when no main
// content is found.
func (e *Extractor) ExtractText(rawHTML string) (string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return "", pagescrape.Errorf(pagescrape.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", nil
	}

	return strings.TrimSpace(result.ContentText), nil
}
