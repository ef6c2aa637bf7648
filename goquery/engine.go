// Package goquery implements pagescrape.Extractor on top of goquery and
// cascadia.
package goquery

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pagescrape"
	"golang.org/x/sync/errgroup"
)

var _ pagescrape.Extractor = (*Engine)(nil)

// Engine extracts structured data from HTML documents.
// It holds no per-document state and is safe for concurrent use.
type Engine struct {
	textExtractors []pagescrape.TextExtractor
}

// Option configures an Engine.
type Option func(*Engine)

// WithTextExtractors sets the main-content extractors tried, in order, for
// TEXT extraction when no selector narrows the scope.
func WithTextExtractors(exts ...pagescrape.TextExtractor) Option {
	return func(e *Engine) {
		e.textExtractors = exts
	}
}

// NewEngine creates a new Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses html and runs the strategy for mode over the scope chosen
// by selector.
func (e *Engine) Extract(html string, mode pagescrape.Mode, selector string) (*pagescrape.Extraction, error) {
	if !mode.Valid() {
		return nil, pagescrape.Errorf(pagescrape.EINVALID, "unsupported scrape type: %s", mode)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, pagescrape.Errorf(pagescrape.EINVALID, "failed to parse HTML: %v", err)
	}

	sc, notices := resolveScope(doc, selector)

	var data pagescrape.Payload
	switch mode {
	case pagescrape.ModeText:
		var text pagescrape.TextPayload
		text, notices = e.text(html, sc, notices)
		data = text
	case pagescrape.ModeTables:
		var tables pagescrape.TablesPayload
		tables, notices = extractTables(sc, notices)
		data = tables
	case pagescrape.ModeLinks:
		var links pagescrape.LinksPayload
		links, notices = extractLinks(sc, notices)
		data = links
	case pagescrape.ModeImages:
		data = extractImages(sc)
	case pagescrape.ModeFull:
		var full *pagescrape.FullPayload
		full, notices = e.full(html, sc, notices)
		data = full
	}

	return &pagescrape.Extraction{Data: data, Notices: notices}, nil
}

// full runs the four single-category strategies concurrently. A category
// that panics is reported and left empty; the others are unaffected.
func (e *Engine) full(html string, sc *scope, notices []pagescrape.Notice) (*pagescrape.FullPayload, []pagescrape.Notice) {
	out := &pagescrape.FullPayload{
		Text:   pagescrape.TextPayload{},
		Tables: pagescrape.TablesPayload{},
		Links:  pagescrape.LinksPayload{},
		Images: pagescrape.ImagesPayload{},
	}

	categories := []struct {
		mode pagescrape.Mode
		run  func() []pagescrape.Notice
	}{
		{pagescrape.ModeText, func() (n []pagescrape.Notice) {
			out.Text, n = e.text(html, sc, nil)
			return n
		}},
		{pagescrape.ModeTables, func() (n []pagescrape.Notice) {
			out.Tables, n = extractTables(sc, nil)
			return n
		}},
		{pagescrape.ModeLinks, func() (n []pagescrape.Notice) {
			out.Links, n = extractLinks(sc, nil)
			return n
		}},
		{pagescrape.ModeImages, func() []pagescrape.Notice {
			out.Images = extractImages(sc)
			return nil
		}},
	}

	// Each category writes only its own field and notice slot.
	perCategory := make([][]pagescrape.Notice, len(categories))
	var g errgroup.Group
	for i, c := range categories {
		g.Go(func() error {
			err := safely(func() {
				perCategory[i] = c.run()
			})
			if err != nil {
				perCategory[i] = []pagescrape.Notice{{
					Code:     pagescrape.NoticeCategoryFailed,
					Category: c.mode,
					Message:  fmt.Sprintf("%s extraction failed: %v", c.mode, err),
				}}
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, c := range categories {
		if perCategory[i] != nil && perCategory[i][0].Code == pagescrape.NoticeCategoryFailed {
			resetCategory(out, c.mode)
		}
		for _, n := range perCategory[i] {
			if n.Category == "" {
				n.Category = c.mode
			}
			notices = append(notices, n)
		}
	}
	return out, notices
}

func resetCategory(out *pagescrape.FullPayload, mode pagescrape.Mode) {
	switch mode {
	case pagescrape.ModeText:
		out.Text = pagescrape.TextPayload{}
	case pagescrape.ModeTables:
		out.Tables = pagescrape.TablesPayload{}
	case pagescrape.ModeLinks:
		out.Links = pagescrape.LinksPayload{}
	case pagescrape.ModeImages:
		out.Images = pagescrape.ImagesPayload{}
	}
}

// safely runs fn and converts a panic into an error.
func safely(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	fn()
	return nil
}
