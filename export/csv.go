package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/fwojciec/pagescrape"
)

var _ pagescrape.Exporter = CSV{}

// CSV writes the result data as comma-separated values. Text becomes a
// single value column, links and images get one column per field, each table
// is a block headed by table_index and its headers, and full results use a
// long category,index,row,field,value layout.
type CSV struct{}

func (CSV) ContentType() string { return "text/csv" }
func (CSV) Extension() string   { return "csv" }

func (CSV) Export(w io.Writer, r *pagescrape.Result) error {
	cw := csv.NewWriter(w)
	var records [][]string

	switch data := r.Data.(type) {
	case pagescrape.TextPayload:
		records = textRecords(data)
	case pagescrape.LinksPayload:
		records = linkRecords(data)
	case pagescrape.ImagesPayload:
		records = imageRecords(data)
	case pagescrape.TablesPayload:
		records = tableRecords(data)
	case *pagescrape.FullPayload:
		records = fullRecords(data)
	default:
		return pagescrape.Errorf(pagescrape.EINVALID, "cannot export %T as csv", r.Data)
	}

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func textRecords(p pagescrape.TextPayload) [][]string {
	records := [][]string{{"value"}}
	for _, s := range p {
		records = append(records, []string{s})
	}
	return records
}

func linkRecords(p pagescrape.LinksPayload) [][]string {
	records := [][]string{{"url", "text", "title"}}
	for _, l := range p {
		records = append(records, []string{l.URL, l.Text, l.Title})
	}
	return records
}

func imageRecords(p pagescrape.ImagesPayload) [][]string {
	records := [][]string{{"src", "alt", "title", "width", "height"}}
	for _, img := range p {
		records = append(records, []string{img.Src, img.Alt, img.Title, img.Width, img.Height})
	}
	return records
}

func tableRecords(p pagescrape.TablesPayload) [][]string {
	var records [][]string
	for _, t := range p {
		idx := strconv.Itoa(t.Index)
		records = append(records, append([]string{"table_index"}, t.Headers...))
		for _, row := range t.Rows {
			rec := make([]string, 0, len(t.Headers)+1)
			rec = append(rec, idx)
			for _, h := range t.Headers {
				rec = append(rec, row[h])
			}
			records = append(records, rec)
		}
	}
	return records
}

func fullRecords(p *pagescrape.FullPayload) [][]string {
	records := [][]string{{"category", "index", "row", "field", "value"}}
	add := func(category pagescrape.Mode, index int, row, field, value string) {
		records = append(records, []string{string(category), strconv.Itoa(index), row, field, value})
	}

	for i, s := range p.Text {
		add(pagescrape.ModeText, i, "", "value", s)
	}
	for _, t := range p.Tables {
		for r, row := range t.Rows {
			for _, h := range t.Headers {
				add(pagescrape.ModeTables, t.Index, strconv.Itoa(r), h, row[h])
			}
		}
	}
	for i, l := range p.Links {
		add(pagescrape.ModeLinks, i, "", "url", l.URL)
		add(pagescrape.ModeLinks, i, "", "text", l.Text)
		add(pagescrape.ModeLinks, i, "", "title", l.Title)
	}
	for i, img := range p.Images {
		add(pagescrape.ModeImages, i, "", "src", img.Src)
		add(pagescrape.ModeImages, i, "", "alt", img.Alt)
		add(pagescrape.ModeImages, i, "", "title", img.Title)
		add(pagescrape.ModeImages, i, "", "width", img.Width)
		add(pagescrape.ModeImages, i, "", "height", img.Height)
	}
	return records
}
