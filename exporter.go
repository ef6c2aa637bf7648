package pagescrape

import "io"

// Exporter serializes a Result to a downloadable format.
type Exporter interface {
	Export(w io.Writer, r *Result) error

	// ContentType is the MIME type of the exported document.
	ContentType() string

	// Extension is the file extension without the leading dot.
	Extension() string
}
