package goquery

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/pagescrape"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// scope is the part of a document a strategy operates over.
type scope struct {
	doc *goquery.Document

	// elements holds the selector matches. It is nil when the whole
	// document is in scope.
	elements *goquery.Selection
}

// resolveScope narrows doc to the elements matching selector. Invalid and
// non-matching selectors fall back to the whole document with a notice.
func resolveScope(doc *goquery.Document, selector string) (*scope, []pagescrape.Notice) {
	sc := &scope{doc: doc}
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return sc, nil
	}

	m, err := cascadia.Compile(selector)
	if err != nil {
		return sc, []pagescrape.Notice{{
			Code:    pagescrape.NoticeSelectorInvalid,
			Message: fmt.Sprintf("selector %q could not be parsed, using whole document: %v", selector, err),
		}}
	}

	matched := doc.FindMatcher(m)
	if matched.Length() == 0 {
		return sc, []pagescrape.Notice{{
			Code:    pagescrape.NoticeSelectorNoMatch,
			Message: fmt.Sprintf("no elements found for selector %q, using whole document", selector),
		}}
	}

	sc.elements = matched
	return sc, nil
}

// whole reports whether the entire document is in scope.
func (s *scope) whole() bool {
	return s.elements == nil
}

// roots returns the scoped elements, or the document node when unscoped.
func (s *scope) roots() []*html.Node {
	if s.whole() {
		return s.doc.Nodes
	}
	return s.elements.Nodes
}

// find returns every node within scope matching m, including scoped
// elements themselves, once each and in document order.
func (s *scope) find(m goquery.Matcher) []*html.Node {
	if s.whole() {
		return s.doc.FindMatcher(m).Nodes
	}

	in := make(map[*html.Node]bool)
	for _, n := range s.elements.Nodes {
		if m.Match(n) {
			in[n] = true
		}
	}
	for _, n := range s.elements.FindMatcher(m).Nodes {
		in[n] = true
	}

	out := make([]*html.Node, 0, len(in))
	preorder(s.doc.Nodes[0], func(n *html.Node) {
		if in[n] {
			out = append(out, n)
		}
	})
	return out
}

func preorder(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		preorder(c, fn)
	}
}

// hiddenText lists elements whose text is never rendered.
var hiddenText = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
}

// visibleText returns the rendered text under n with runs of whitespace
// collapsed to single spaces.
func visibleText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		case html.ElementNode:
			if hiddenText[n.DataAtom] {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// attr returns the value of the named attribute, or "" if absent.
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
