package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/pagescrape"
)

// Run prints recent scrapes, newest first.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	if deps.History == nil {
		return fmt.Errorf("history is disabled. Set --db or PAGESCRAPE_DB to enable it")
	}

	filter := pagescrape.RecordFilter{Limit: c.Limit}
	if c.URL != "" {
		filter.URL = &c.URL
	}
	if c.Failed {
		ok := false
		filter.Success = &ok
	}

	records, err := deps.History.FindRecords(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagescrape.ErrorMessage(err))
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(deps.Stdout, "No scrapes recorded yet. Use 'pagescrape scrape' to create one.")
		return nil
	}

	for _, r := range records {
		status := "ok"
		if !r.Success {
			status = r.ErrorCode
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %-6s  %-12s  %6dms  %s\n",
			r.CreatedAt.Local().Format(time.DateTime), r.ID, r.Mode, status, r.DurationMS, r.URL)
	}

	return nil
}
