package pagescrape

import (
	"bytes"
	"encoding/json"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Payload is the mode-specific data of an extraction. The concrete type is
// determined by Mode: TextPayload, TablesPayload, LinksPayload,
// ImagesPayload or FullPayload.
type Payload interface {
	Mode() Mode
}

// Compile-time interface verification.
var (
	_ Payload = TextPayload{}
	_ Payload = TablesPayload{}
	_ Payload = LinksPayload{}
	_ Payload = ImagesPayload{}
	_ Payload = (*FullPayload)(nil)
)

// TextPayload holds extracted text, one entry per scoped element.
// A single entry is encoded as a plain string, anything else as a list.
type TextPayload []string

func (TextPayload) Mode() Mode { return ModeText }

// MarshalJSON encodes a single segment as a string and everything else as a list.
func (p TextPayload) MarshalJSON() ([]byte, error) {
	if len(p) == 1 {
		return json.Marshal(p[0])
	}
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(p))
}

// UnmarshalJSON accepts either a string or a list of strings.
func (p *TextPayload) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = TextPayload{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*p = list
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (p TextPayload) MarshalYAML() (any, error) {
	if len(p) == 1 {
		return p[0], nil
	}
	return []string(p), nil
}

// Table is a single HTML table with its header labels and data rows.
// Skipped counts rows excluded because their cell count did not match.
type Table struct {
	Index   int                 `json:"table_index" yaml:"table_index"`
	Headers []string            `json:"headers" yaml:"headers"`
	Rows    []map[string]string `json:"data" yaml:"data"`
	Skipped int                 `json:"skipped_rows" yaml:"skipped_rows"`
}

// MarshalJSON writes each row's cells in header order.
func (t Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.doc())
}

// MarshalYAML mirrors MarshalJSON.
func (t Table) MarshalYAML() (any, error) {
	return t.doc(), nil
}

type tableDoc struct {
	Index   int          `json:"table_index" yaml:"table_index"`
	Headers []string     `json:"headers" yaml:"headers"`
	Rows    []orderedRow `json:"data" yaml:"data"`
	Skipped int          `json:"skipped_rows" yaml:"skipped_rows"`
}

func (t Table) doc() tableDoc {
	rows := make([]orderedRow, 0, len(t.Rows))
	for _, row := range t.Rows {
		rows = append(rows, orderedRow{keys: rowKeys(t.Headers, row), cells: row})
	}
	return tableDoc{Index: t.Index, Headers: t.Headers, Rows: rows, Skipped: t.Skipped}
}

// rowKeys orders a row's keys by header position. Keys missing from the
// headers follow in sorted order.
func rowKeys(headers []string, row map[string]string) []string {
	keys := make([]string, 0, len(row))
	seen := make(map[string]bool, len(row))
	for _, h := range headers {
		if _, ok := row[h]; ok && !seen[h] {
			keys = append(keys, h)
			seen[h] = true
		}
	}
	var extra []string
	for k := range row {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	return append(keys, extra...)
}

// orderedRow encodes a row as an object with keys in a fixed order.
type orderedRow struct {
	keys  []string
	cells map[string]string
}

func (r orderedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(r.cells[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r orderedRow) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range r.keys {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.cells[k]},
		)
	}
	return n, nil
}

// TablesPayload holds every table that yielded at least one row.
type TablesPayload []Table

func (TablesPayload) Mode() Mode { return ModeTables }

// Link is a hyperlink found in the document. URL is the raw href value.
type Link struct {
	URL   string `json:"url" yaml:"url"`
	Text  string `json:"text" yaml:"text"`
	Title string `json:"title" yaml:"title"`
}

// LinksPayload holds every link in document order.
type LinksPayload []Link

func (LinksPayload) Mode() Mode { return ModeLinks }

// Image is an image element found in the document. Missing attributes are
// reported as empty strings.
type Image struct {
	Src    string `json:"src" yaml:"src"`
	Alt    string `json:"alt" yaml:"alt"`
	Title  string `json:"title" yaml:"title"`
	Width  string `json:"width" yaml:"width"`
	Height string `json:"height" yaml:"height"`
}

// ImagesPayload holds every image in document order.
type ImagesPayload []Image

func (ImagesPayload) Mode() Mode { return ModeImages }

// FullPayload combines the four single-category extractions.
type FullPayload struct {
	Text   TextPayload   `json:"text" yaml:"text"`
	Tables TablesPayload `json:"tables" yaml:"tables"`
	Links  LinksPayload  `json:"links" yaml:"links"`
	Images ImagesPayload `json:"images" yaml:"images"`
}

func (*FullPayload) Mode() Mode { return ModeFull }

// MarshalJSON encodes empty categories as empty lists rather than null.
func (p *FullPayload) MarshalJSON() ([]byte, error) {
	type full FullPayload
	out := full(*p)
	if out.Tables == nil {
		out.Tables = TablesPayload{}
	}
	if out.Links == nil {
		out.Links = LinksPayload{}
	}
	if out.Images == nil {
		out.Images = ImagesPayload{}
	}
	return json.Marshal(out)
}

// NoticeCode classifies a degraded-but-successful extraction outcome.
type NoticeCode string

// Notice codes.
const (
	NoticeSelectorNoMatch NoticeCode = "selector_no_match"
	NoticeSelectorInvalid NoticeCode = "selector_invalid"
	NoticeElementSkipped  NoticeCode = "element_skipped"
	NoticeContentFallback NoticeCode = "content_fallback"
	NoticeCategoryFailed  NoticeCode = "category_failed"
)

// Notice records a fallback taken during extraction. Notices never fail a
// request; they explain why the result may be less complete than expected.
type Notice struct {
	Code     NoticeCode `json:"code" yaml:"code"`
	Category Mode       `json:"category,omitempty" yaml:"category,omitempty"`
	Message  string     `json:"message" yaml:"message"`
}

// Extraction is the output of an Extractor for one document.
type Extraction struct {
	Data    Payload
	Notices []Notice
}

// Result is an extraction packaged with request metadata.
type Result struct {
	URL       string
	Mode      Mode
	Timestamp time.Time
	Data      Payload
	Notices   []Notice
}

// NewResult wraps an extraction with the source URL and completion time.
func NewResult(url string, ext *Extraction, completedAt time.Time) *Result {
	return &Result{
		URL:       url,
		Mode:      ext.Data.Mode(),
		Timestamp: completedAt,
		Data:      ext.Data,
		Notices:   ext.Notices,
	}
}

// Degraded reports whether any fallback was taken.
func (r *Result) Degraded() bool {
	return len(r.Notices) > 0
}

// resultDoc is the wire shape shared by the JSON and YAML codecs.
type resultDoc struct {
	URL       string   `json:"url" yaml:"url"`
	Mode      Mode     `json:"scrape_type" yaml:"scrape_type"`
	Timestamp string   `json:"timestamp" yaml:"timestamp"`
	Data      Payload  `json:"data" yaml:"data"`
	Notices   []Notice `json:"notices,omitempty" yaml:"notices,omitempty"`
}

func (r *Result) doc() resultDoc {
	return resultDoc{
		URL:       r.URL,
		Mode:      r.Mode,
		Timestamp: r.Timestamp.Format(time.RFC3339Nano),
		Data:      r.Data,
		Notices:   r.Notices,
	}
}

// MarshalJSON encodes the result with an ISO-8601 timestamp.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.doc())
}

// MarshalYAML encodes the result with the same field names as JSON.
func (r *Result) MarshalYAML() (any, error) {
	return r.doc(), nil
}

// UnmarshalJSON decodes a result, choosing the payload type from scrape_type.
func (r *Result) UnmarshalJSON(data []byte) error {
	var doc struct {
		URL       string          `json:"url"`
		Mode      Mode            `json:"scrape_type"`
		Timestamp string          `json:"timestamp"`
		Data      json.RawMessage `json:"data"`
		Notices   []Notice        `json:"notices"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Errorf(EINVALID, "invalid result: %v", err)
	}

	payload, err := decodePayload(doc.Mode, doc.Data)
	if err != nil {
		return err
	}

	var ts time.Time
	if doc.Timestamp != "" {
		ts, err = time.Parse(time.RFC3339Nano, doc.Timestamp)
		if err != nil {
			return Errorf(EINVALID, "invalid timestamp: %s", doc.Timestamp)
		}
	}

	*r = Result{
		URL:       doc.URL,
		Mode:      doc.Mode,
		Timestamp: ts,
		Data:      payload,
		Notices:   doc.Notices,
	}
	return nil
}

func decodePayload(mode Mode, data json.RawMessage) (Payload, error) {
	if len(data) == 0 || string(data) == "null" {
		data = nil
	}

	var (
		payload Payload
		target  any
	)
	switch mode {
	case ModeText:
		p := &TextPayload{}
		target, payload = p, p
	case ModeTables:
		p := &TablesPayload{}
		target, payload = p, p
	case ModeLinks:
		p := &LinksPayload{}
		target, payload = p, p
	case ModeImages:
		p := &ImagesPayload{}
		target, payload = p, p
	case ModeFull:
		p := &FullPayload{}
		target, payload = p, p
	default:
		return nil, Errorf(EINVALID, "unsupported scrape type: %s", mode)
	}

	if data != nil {
		if err := json.Unmarshal(data, target); err != nil {
			return nil, Errorf(EINVALID, "invalid %s data: %v", mode, err)
		}
	}

	// Return values rather than pointers so type switches see one shape.
	switch p := payload.(type) {
	case *TextPayload:
		return *p, nil
	case *TablesPayload:
		return *p, nil
	case *LinksPayload:
		return *p, nil
	case *ImagesPayload:
		return *p, nil
	}
	return payload, nil
}
