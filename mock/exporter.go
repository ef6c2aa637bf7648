package mock

import (
	"io"

	"github.com/fwojciec/pagescrape"
)

var _ pagescrape.Exporter = (*Exporter)(nil)

// Exporter is a mock implementation of pagescrape.Exporter.
type Exporter struct {
	ExportFn      func(w io.Writer, r *pagescrape.Result) error
	ContentTypeFn func() string
	ExtensionFn   func() string
}

func (e *Exporter) Export(w io.Writer, r *pagescrape.Result) error {
	return e.ExportFn(w, r)
}

func (e *Exporter) ContentType() string {
	return e.ContentTypeFn()
}

func (e *Exporter) Extension() string {
	return e.ExtensionFn()
}
