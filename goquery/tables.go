package goquery

import (
	"fmt"
	"strconv"

	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/pagescrape"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var tableMatcher = cascadia.MustCompile("table")

// extractTables parses every table in scope. table_index counts every table
// found, including those omitted for having no usable rows.
func extractTables(sc *scope, notices []pagescrape.Notice) (pagescrape.TablesPayload, []pagescrape.Notice) {
	tables := pagescrape.TablesPayload{}
	for i, n := range sc.find(tableMatcher) {
		var (
			t  pagescrape.Table
			ok bool
		)
		err := safely(func() {
			t, ok = parseTable(n, i)
		})
		if err != nil {
			notices = append(notices, pagescrape.Notice{
				Code:     pagescrape.NoticeElementSkipped,
				Category: pagescrape.ModeTables,
				Message:  fmt.Sprintf("error processing table %d: %v", i, err),
			})
			continue
		}
		if ok {
			tables = append(tables, t)
		}
	}
	return tables, notices
}

// tableRow is a tr element and whether it belongs to a thead section.
type tableRow struct {
	node *html.Node
	head bool
}

// parseTable converts a table element. It reports false when no data row
// survives. Every row is either the header row, a data row, or counted in
// Skipped.
func parseTable(n *html.Node, index int) (pagescrape.Table, bool) {
	rows := rowsOf(n)
	if len(rows) == 0 {
		return pagescrape.Table{}, false
	}

	headerAt := -1
	for i, r := range rows {
		if r.head {
			headerAt = i
			break
		}
	}
	if headerAt < 0 && allHeaderCells(rows[0].node) {
		headerAt = 0
	}

	var headers []string
	if headerAt >= 0 {
		for _, c := range cellsOf(rows[headerAt].node) {
			headers = append(headers, visibleText(c))
		}
	} else {
		headers = make([]string, len(cellsOf(rows[0].node)))
	}
	headers = labelHeaders(headers)

	t := pagescrape.Table{
		Index:   index,
		Headers: headers,
		Rows:    []map[string]string{},
	}
	for i, r := range rows {
		if i == headerAt {
			continue
		}
		cells := cellsOf(r.node)
		if len(cells) == 0 || len(cells) != len(headers) {
			t.Skipped++
			continue
		}
		row := make(map[string]string, len(cells))
		for j, c := range cells {
			row[headers[j]] = visibleText(c)
		}
		t.Rows = append(t.Rows, row)
	}

	if len(t.Rows) == 0 {
		return pagescrape.Table{}, false
	}
	return t, true
}

// rowsOf returns the rows belonging directly to table n, in document order.
// Rows of nested tables are not included.
func rowsOf(n *html.Node) []tableRow {
	var rows []tableRow
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Tr:
			rows = append(rows, tableRow{node: c})
		case atom.Thead, atom.Tbody, atom.Tfoot:
			for r := c.FirstChild; r != nil; r = r.NextSibling {
				if r.Type == html.ElementNode && r.DataAtom == atom.Tr {
					rows = append(rows, tableRow{node: r, head: c.DataAtom == atom.Thead})
				}
			}
		}
	}
	return rows
}

// cellsOf returns the th and td children of a row.
func cellsOf(tr *html.Node) []*html.Node {
	var cells []*html.Node
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Th || c.DataAtom == atom.Td) {
			cells = append(cells, c)
		}
	}
	return cells
}

func allHeaderCells(tr *html.Node) bool {
	cells := cellsOf(tr)
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if c.DataAtom != atom.Th {
			return false
		}
	}
	return true
}

// labelHeaders fills blank labels with "Column N" and disambiguates repeated
// labels with ".1", ".2" suffixes so every column maps to a distinct key.
func labelHeaders(headers []string) []string {
	out := make([]string, len(headers))
	used := make(map[string]bool, len(headers))
	suffix := make(map[string]int)
	for i, h := range headers {
		if h == "" {
			h = "Column " + strconv.Itoa(i+1)
		}
		label := h
		for used[label] {
			suffix[h]++
			label = h + "." + strconv.Itoa(suffix[h])
		}
		used[label] = true
		out[i] = label
	}
	return out
}
