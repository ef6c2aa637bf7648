package pagescrape

// Extractor turns an HTML document into structured data for a mode.
//
// The selector is optional. An invalid or non-matching selector degrades to
// whole-document extraction and is reported through Extraction.Notices
// rather than as an error.
type Extractor interface {
	Extract(html string, mode Mode, selector string) (*Extraction, error)
}

// TextExtractor isolates the main readable content of a page as plain text.
// An empty result with a nil error means no main content was identified.
type TextExtractor interface {
	ExtractText(html string) (string, error)
}
