package pagescrape_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/pagescrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var fixedTime = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

func TestResult_MarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("single text segment encodes as string", func(t *testing.T) {
		t.Parallel()

		r := pagescrape.NewResult("https://example.com", &pagescrape.Extraction{
			Data: pagescrape.TextPayload{"Hello world"},
		}, fixedTime)

		b, err := json.Marshal(r)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"url": "https://example.com",
			"scrape_type": "text",
			"timestamp": "2026-03-14T15:09:26Z",
			"data": "Hello world"
		}`, string(b))
	})

	t.Run("multiple text segments encode as list", func(t *testing.T) {
		t.Parallel()

		r := pagescrape.NewResult("https://example.com", &pagescrape.Extraction{
			Data: pagescrape.TextPayload{"A", "B"},
		}, fixedTime)

		b, err := json.Marshal(r)
		require.NoError(t, err)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(b, &raw))
		assert.Equal(t, []any{"A", "B"}, raw["data"])
	})

	t.Run("tables use table_index and data keys", func(t *testing.T) {
		t.Parallel()

		r := pagescrape.NewResult("https://example.com", &pagescrape.Extraction{
			Data: pagescrape.TablesPayload{{
				Index:   0,
				Headers: []string{"Name", "Age"},
				Rows:    []map[string]string{{"Name": "Ann", "Age": "30"}},
			}},
		}, fixedTime)

		b, err := json.Marshal(r)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"url": "https://example.com",
			"scrape_type": "tables",
			"timestamp": "2026-03-14T15:09:26Z",
			"data": [{"table_index": 0, "headers": ["Name","Age"], "data": [{"Name":"Ann","Age":"30"}], "skipped_rows": 0}]
		}`, string(b))
	})

	t.Run("full payload emits empty lists", func(t *testing.T) {
		t.Parallel()

		r := pagescrape.NewResult("https://example.com", &pagescrape.Extraction{
			Data: &pagescrape.FullPayload{Text: pagescrape.TextPayload{"x"}},
		}, fixedTime)

		b, err := json.Marshal(r)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"url": "https://example.com",
			"scrape_type": "full",
			"timestamp": "2026-03-14T15:09:26Z",
			"data": {"text": "x", "tables": [], "links": [], "images": []}
		}`, string(b))
	})

	t.Run("notices are included when present", func(t *testing.T) {
		t.Parallel()

		r := pagescrape.NewResult("https://example.com", &pagescrape.Extraction{
			Data: pagescrape.LinksPayload{},
			Notices: []pagescrape.Notice{{
				Code:    pagescrape.NoticeSelectorNoMatch,
				Message: "selector matched nothing",
			}},
		}, fixedTime)

		assert.True(t, r.Degraded())

		b, err := json.Marshal(r)
		require.NoError(t, err)
		assert.Contains(t, string(b), `"notices":[{"code":"selector_no_match","message":"selector matched nothing"}]`)
	})
}

func TestResult_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("dispatches on scrape_type", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			in   string
			want pagescrape.Payload
		}{
			{"text string", `{"scrape_type":"text","data":"hi"}`, pagescrape.TextPayload{"hi"}},
			{"text list", `{"scrape_type":"text","data":["a","b"]}`, pagescrape.TextPayload{"a", "b"}},
			{"links", `{"scrape_type":"links","data":[{"url":"/a","text":"A","title":""}]}`, pagescrape.LinksPayload{{URL: "/a", Text: "A"}}},
			{"images", `{"scrape_type":"images","data":[{"src":"x.png","alt":"","title":"","width":"10","height":""}]}`, pagescrape.ImagesPayload{{Src: "x.png", Width: "10"}}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				var r pagescrape.Result
				require.NoError(t, json.Unmarshal([]byte(tt.in), &r))
				assert.Equal(t, tt.want, r.Data)
				assert.Equal(t, tt.want.Mode(), r.Mode)
			})
		}
	})

	t.Run("round trips a full result", func(t *testing.T) {
		t.Parallel()

		want := pagescrape.NewResult("https://example.com", &pagescrape.Extraction{
			Data: &pagescrape.FullPayload{
				Text:   pagescrape.TextPayload{"body"},
				Tables: pagescrape.TablesPayload{},
				Links:  pagescrape.LinksPayload{{URL: "https://a.test", Text: "A"}},
				Images: pagescrape.ImagesPayload{},
			},
		}, fixedTime)

		b, err := json.Marshal(want)
		require.NoError(t, err)

		var got pagescrape.Result
		require.NoError(t, json.Unmarshal(b, &got))
		assert.Equal(t, want.URL, got.URL)
		assert.True(t, want.Timestamp.Equal(got.Timestamp))
		assert.Equal(t, want.Data, got.Data)
	})

	t.Run("rejects unknown scrape_type", func(t *testing.T) {
		t.Parallel()

		var r pagescrape.Result
		err := json.Unmarshal([]byte(`{"scrape_type":"videos","data":[]}`), &r)
		require.Error(t, err)
	})
}

func TestResult_MarshalYAML(t *testing.T) {
	t.Parallel()

	r := pagescrape.NewResult("https://example.com", &pagescrape.Extraction{
		Data: pagescrape.LinksPayload{{URL: "/about", Text: "About"}},
	}, fixedTime)

	b, err := yaml.Marshal(r)
	require.NoError(t, err)

	out := string(b)
	assert.Contains(t, out, "url: https://example.com")
	assert.Contains(t, out, "scrape_type: links")
	assert.Contains(t, out, "url: /about")
	assert.Contains(t, out, "text: About")
}

func TestTable_RowOrder(t *testing.T) {
	t.Parallel()

	table := pagescrape.Table{
		Headers: []string{"Name", "Age", "City"},
		Rows:    []map[string]string{{"Name": "Ann", "Age": "30", "City": "Oslo"}},
	}

	t.Run("JSON keeps header order", func(t *testing.T) {
		t.Parallel()

		b, err := json.Marshal(table)
		require.NoError(t, err)
		assert.Contains(t, string(b), `"data":[{"Name":"Ann","Age":"30","City":"Oslo"}]`)

		var back pagescrape.Table
		require.NoError(t, json.Unmarshal(b, &back))
		assert.Equal(t, table, back)
	})

	t.Run("YAML keeps header order", func(t *testing.T) {
		t.Parallel()

		b, err := yaml.Marshal(pagescrape.TablesPayload{table})
		require.NoError(t, err)

		out := string(b)
		name := strings.Index(out, "Name: Ann")
		age := strings.Index(out, "Age: \"30\"")
		city := strings.Index(out, "City: Oslo")
		require.True(t, name >= 0 && age >= 0 && city >= 0, out)
		assert.Less(t, name, age)
		assert.Less(t, age, city)
	})

	t.Run("keys outside the headers follow sorted", func(t *testing.T) {
		t.Parallel()

		b, err := json.Marshal(pagescrape.Table{
			Headers: []string{"B"},
			Rows:    []map[string]string{{"z": "3", "B": "1", "a": "2"}},
		})
		require.NoError(t, err)
		assert.Contains(t, string(b), `{"B":"1","a":"2","z":"3"}`)
	})
}
