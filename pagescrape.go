// Package pagescrape provides a rate-limited web page scraping service.
// It fetches a page, admits or rejects each caller through a per-client
// sliding window, and extracts text, tables, links and images from the
// retrieved HTML into a uniform result that can be exported in several formats.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, trafilatura/).
package pagescrape
