// Package export serializes scrape results to downloadable formats.
package export

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/fwojciec/pagescrape"
	"gopkg.in/yaml.v3"
)

// Supported format names.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
)

// Formats returns the supported format names.
func Formats() []string {
	return []string{FormatJSON, FormatCSV, FormatYAML, FormatMarkdown}
}

// Option configures New.
type Option func(*options)

type options struct {
	converter pagescrape.Converter
}

// WithConverter sets the HTML to Markdown converter used by the markdown
// format.
func WithConverter(c pagescrape.Converter) Option {
	return func(o *options) {
		o.converter = c
	}
}

// New returns the exporter for a case-insensitive format name.
func New(format string, opts ...Option) (pagescrape.Exporter, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		return JSON{}, nil
	case FormatCSV:
		return CSV{}, nil
	case FormatYAML, "yml":
		return YAML{}, nil
	case FormatMarkdown, "md":
		if o.converter == nil {
			return nil, pagescrape.Errorf(pagescrape.EINVALID, "markdown export is not configured")
		}
		return &Markdown{Converter: o.converter}, nil
	}
	return nil, pagescrape.Errorf(pagescrape.EINVALID,
		"unsupported export format %q, use one of: %s", format, strings.Join(Formats(), ", "))
}

// Filename is the attachment name for an export.
func Filename(e pagescrape.Exporter) string {
	return "scraped_data." + e.Extension()
}

var (
	_ pagescrape.Exporter = JSON{}
	_ pagescrape.Exporter = YAML{}
)

// JSON writes the result as indented JSON.
type JSON struct{}

func (JSON) ContentType() string { return "application/json" }
func (JSON) Extension() string   { return "json" }

func (JSON) Export(w io.Writer, r *pagescrape.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// YAML writes the result as a YAML document.
type YAML struct{}

func (YAML) ContentType() string { return "application/yaml" }
func (YAML) Extension() string   { return "yaml" }

func (YAML) Export(w io.Writer, r *pagescrape.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}
