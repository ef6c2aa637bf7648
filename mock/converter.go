package mock

import "github.com/fwojciec/pagescrape"

var _ pagescrape.Converter = (*Converter)(nil)

// Converter is a mock implementation of pagescrape.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
