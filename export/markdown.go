package export

import (
	"bytes"
	"html/template"
	"io"
	"time"

	"github.com/fwojciec/pagescrape"
)

var _ pagescrape.Exporter = (*Markdown)(nil)

// reportTmpl lays the result out as HTML so the Markdown converter produces
// headings, tables and lists.
var reportTmpl = template.Must(template.New("report").Parse(`
<h1>{{.URL}}</h1>
<p>Scrape type: <code>{{.Mode}}</code><br>Timestamp: {{.Timestamp}}</p>
{{with .Text}}<h2>Text</h2>{{range .}}<p>{{.}}</p>{{end}}{{end}}
{{with .Tables}}<h2>Tables</h2>{{range .}}{{$headers := .Headers}}
<h3>Table {{.Index}}</h3>
<table>
<thead><tr>{{range $headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>{{range .Rows}}{{$row := .}}<tr>{{range $headers}}<td>{{index $row .}}</td>{{end}}</tr>{{end}}</tbody>
</table>{{end}}{{end}}
{{with .Links}}<h2>Links</h2><ul>{{range .}}<li><a href="{{.URL}}"{{with .Title}} title="{{.}}"{{end}}>{{if .Text}}{{.Text}}{{else}}{{.URL}}{{end}}</a></li>{{end}}</ul>{{end}}
{{with .Images}}<h2>Images</h2><ul>{{range .}}<li><img src="{{.Src}}" alt="{{.Alt}}"{{with .Title}} title="{{.}}"{{end}}></li>{{end}}</ul>{{end}}
{{with .Notices}}<h2>Notices</h2><ul>{{range .}}<li><code>{{.Code}}</code> {{.Message}}</li>{{end}}</ul>{{end}}
`))

// baseConverter is implemented by converters that can resolve relative
// targets against the page URL.
type baseConverter interface {
	ConvertFrom(html, pageURL string) (string, error)
}

// Markdown renders the result as a human-readable Markdown report.
type Markdown struct {
	Converter pagescrape.Converter
}

func (*Markdown) ContentType() string { return "text/markdown" }
func (*Markdown) Extension() string   { return "md" }

func (m *Markdown) Export(w io.Writer, r *pagescrape.Result) error {
	view := reportView{
		URL:       r.URL,
		Mode:      r.Mode,
		Timestamp: r.Timestamp.Format(time.RFC3339),
		Notices:   r.Notices,
	}
	switch data := r.Data.(type) {
	case pagescrape.TextPayload:
		view.Text = data
	case pagescrape.TablesPayload:
		view.Tables = data
	case pagescrape.LinksPayload:
		view.Links = data
	case pagescrape.ImagesPayload:
		view.Images = data
	case *pagescrape.FullPayload:
		view.Text, view.Tables, view.Links, view.Images = data.Text, data.Tables, data.Links, data.Images
	}

	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, view); err != nil {
		return err
	}

	var md string
	var err error
	if bc, ok := m.Converter.(baseConverter); ok {
		md, err = bc.ConvertFrom(buf.String(), r.URL)
	} else {
		md, err = m.Converter.Convert(buf.String())
	}
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, md+"\n")
	return err
}

type reportView struct {
	URL       string
	Mode      pagescrape.Mode
	Timestamp string
	Text      pagescrape.TextPayload
	Tables    pagescrape.TablesPayload
	Links     pagescrape.LinksPayload
	Images    pagescrape.ImagesPayload
	Notices   []pagescrape.Notice
}
