package goquery

import (
	"fmt"
	"strings"

	"github.com/fwojciec/pagescrape"
)

// text prefers the main-content extractors over the raw document when no
// selector narrows the scope, then falls back to the visible text of each
// scoped element.
func (e *Engine) text(rawHTML string, sc *scope, notices []pagescrape.Notice) (pagescrape.TextPayload, []pagescrape.Notice) {
	if sc.whole() && len(e.textExtractors) > 0 {
		var failures []string
		for _, ext := range e.textExtractors {
			text, err := ext.ExtractText(rawHTML)
			if err != nil {
				failures = append(failures, err.Error())
				continue
			}
			if text = strings.TrimSpace(text); text != "" {
				return pagescrape.TextPayload{text}, notices
			}
		}

		msg := "main content extraction found nothing, using visible page text"
		if len(failures) > 0 {
			msg = fmt.Sprintf("%s: %s", msg, strings.Join(failures, "; "))
		}
		notices = append(notices, pagescrape.Notice{
			Code:    pagescrape.NoticeContentFallback,
			Message: msg,
		})
	}

	roots := sc.roots()
	out := make(pagescrape.TextPayload, 0, len(roots))
	for _, n := range roots {
		out = append(out, visibleText(n))
	}
	return out, notices
}
