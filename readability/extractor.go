// Package readability implements pagescrape.TextExtractor with go-readability.
package readability

import (
	"strings"

	"github.com/fwojciec/pagescrape"
	"github.com/go-shiori/go-readability"
)

var _ pagescrape.TextExtractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract the main article text.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractText returns the plain text of the main article, or "" when
// readability cannot identify one.
func (e *Extractor) ExtractText(rawHTML string) (string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return "", pagescrape.Errorf(pagescrape.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(article.TextContent), nil
}
