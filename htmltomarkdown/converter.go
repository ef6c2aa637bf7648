// Package htmltomarkdown implements pagescrape.Converter with html-to-markdown.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/pagescrape"
)

var _ pagescrape.Converter = (*Converter)(nil)

// Converter turns HTML reports into Markdown, rendering tables as pipe
// tables.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFrom(html, "")
}

// ConvertFrom is like Convert but resolves relative link and image targets
// against pageURL. An empty pageURL leaves them as written.
func (c *Converter) ConvertFrom(html, pageURL string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", pagescrape.Errorf(pagescrape.EINVALID, "empty HTML input")
	}

	if pageURL == "" {
		return c.conv.ConvertString(html)
	}
	return c.conv.ConvertString(html, converter.WithDomain(pageURL))
}
