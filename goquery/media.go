package goquery

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/pagescrape"
)

var (
	linkMatcher  = cascadia.MustCompile("a[href]")
	imageMatcher = cascadia.MustCompile("img[src]")
)

// extractLinks records every anchor whose href parses as a URL reference.
// The href is reported as written, not resolved against the page URL.
func extractLinks(sc *scope, notices []pagescrape.Notice) (pagescrape.LinksPayload, []pagescrape.Notice) {
	links := pagescrape.LinksPayload{}
	for _, n := range sc.find(linkMatcher) {
		href := strings.TrimSpace(attr(n, "href"))
		if href == "" {
			continue
		}
		if _, err := url.Parse(href); err != nil {
			notices = append(notices, pagescrape.Notice{
				Code:     pagescrape.NoticeElementSkipped,
				Category: pagescrape.ModeLinks,
				Message:  fmt.Sprintf("skipping link with unparseable href %q", href),
			})
			continue
		}
		links = append(links, pagescrape.Link{
			URL:   href,
			Text:  visibleText(n),
			Title: attr(n, "title"),
		})
	}
	return links, notices
}

// extractImages records every img element with a src attribute.
func extractImages(sc *scope) pagescrape.ImagesPayload {
	images := pagescrape.ImagesPayload{}
	for _, n := range sc.find(imageMatcher) {
		images = append(images, pagescrape.Image{
			Src:    attr(n, "src"),
			Alt:    attr(n, "alt"),
			Title:  attr(n, "title"),
			Width:  attr(n, "width"),
			Height: attr(n, "height"),
		})
	}
	return images
}
