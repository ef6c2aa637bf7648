package main

import (
	"fmt"

	"github.com/fwojciec/pagescrape"
	"github.com/fwojciec/pagescrape/export"
	"github.com/fwojciec/pagescrape/fs"
	"golang.org/x/sync/errgroup"
)

// Run scrapes every URL concurrently and prints the results in argument
// order. Failed URLs are reported on stderr.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	mode, err := pagescrape.ParseMode(c.Type)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagescrape.ErrorMessage(err))
		return err
	}

	exp, err := export.New(c.Format, export.WithConverter(deps.Converter))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagescrape.ErrorMessage(err))
		return err
	}

	results := make([]*pagescrape.Result, len(c.URLs))
	errs := make([]error, len(c.URLs))

	var g errgroup.Group
	g.SetLimit(max(1, c.Concurrency))
	for i, u := range c.URLs {
		g.Go(func() error {
			results[i], errs[i] = deps.Scraper.Scrape(deps.Ctx, &pagescrape.ScrapeRequest{
				URL:      u,
				Mode:     mode,
				Selector: c.Selector,
			})
			return nil
		})
	}
	_ = g.Wait()

	var files *fs.Writer
	if c.Out != "" {
		files = fs.NewWriter(c.Out, exp)
	}

	var failed int
	for i, u := range c.URLs {
		if errs[i] != nil {
			failed++
			fmt.Fprintf(deps.Stderr, "error: %s: %s\n", u, pagescrape.ErrorMessage(errs[i]))
			continue
		}
		if files != nil {
			path, err := files.Write(results[i])
			if err != nil {
				return fmt.Errorf("failed to write %s: %w", u, err)
			}
			fmt.Fprintln(deps.Stdout, path)
			continue
		}
		if err := exp.Export(deps.Stdout, results[i]); err != nil {
			return fmt.Errorf("failed to write %s: %w", u, err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scrapes failed", failed, len(c.URLs))
	}
	return nil
}
