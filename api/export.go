package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fwojciec/pagescrape"
	"github.com/fwojciec/pagescrape/export"
)

type exportInput struct {
	Format  string `path:"format" doc:"json, csv, yaml or markdown"`
	RawBody []byte `contentType:"application/json" doc:"A result as returned in the data field of /api/scrape"`
}

type exportOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

func (s *server) registerExportHandlers(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "export",
		Method:      http.MethodPost,
		Path:        "/api/export/{format}",
		Summary:     "Export a scrape result",
		Tags:        []string{"Export"},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Exported document",
				Content: map[string]*huma.MediaType{
					"application/octet-stream": {
						Schema: &huma.Schema{Type: "string", Format: "binary"},
					},
				},
			},
		},
	}, func(ctx context.Context, input *exportInput) (*exportOutput, error) {
		if err := s.admit(ctx); err != nil {
			return nil, err
		}

		exp, err := export.New(input.Format, export.WithConverter(s.Converter))
		if err != nil {
			return nil, s.mapErr(err)
		}

		var result pagescrape.Result
		if err := json.Unmarshal(input.RawBody, &result); err != nil {
			if pagescrape.ErrorCode(err) == pagescrape.EINTERNAL {
				err = pagescrape.Errorf(pagescrape.EINVALID, "invalid result: %v", err)
			}
			return nil, s.mapErr(err)
		}

		var buf bytes.Buffer
		if err := exp.Export(&buf, &result); err != nil {
			return nil, s.mapErr(err)
		}

		return &exportOutput{
			ContentType:        exp.ContentType(),
			ContentDisposition: fmt.Sprintf("attachment; filename=%s", export.Filename(exp)),
			Body:               buf.Bytes(),
		}, nil
	})
}
