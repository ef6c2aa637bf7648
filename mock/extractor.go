package mock

import "github.com/fwojciec/pagescrape"

var (
	_ pagescrape.Extractor     = (*Extractor)(nil)
	_ pagescrape.TextExtractor = (*TextExtractor)(nil)
)

// Extractor is a mock implementation of pagescrape.Extractor.
type Extractor struct {
	ExtractFn func(html string, mode pagescrape.Mode, selector string) (*pagescrape.Extraction, error)
}

func (e *Extractor) Extract(html string, mode pagescrape.Mode, selector string) (*pagescrape.Extraction, error) {
	return e.ExtractFn(html, mode, selector)
}

// TextExtractor is a mock implementation of pagescrape.TextExtractor.
type TextExtractor struct {
	ExtractTextFn func(html string) (string, error)
}

func (e *TextExtractor) ExtractText(html string) (string, error) {
	return e.ExtractTextFn(html)
}
