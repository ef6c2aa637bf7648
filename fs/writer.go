// Package fs writes exported scrape results to a directory tree.
package fs

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/pagescrape"
)

// URLToPath converts a page URL to a relative file path with the given
// extension, rooted at the host name.
// Example: https://example.com/docs/api/users, "csv" → example.com/docs/api/users.csv
func URLToPath(rawURL, ext string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", pagescrape.Errorf(pagescrape.EINVALID, "invalid URL: %s", rawURL)
	}
	if u.Host == "" {
		return "", pagescrape.Errorf(pagescrape.EINVALID, "URL has no host: %s", rawURL)
	}

	host := strings.ReplaceAll(u.Host, ":", "_")
	path := u.Path

	// Root or trailing slash → index
	if path == "" || path == "/" {
		return filepath.Join(host, "index."+ext), nil
	}

	path = strings.TrimPrefix(path, "/")
	if strings.HasSuffix(path, "/") {
		path += "index"
	}

	rel := filepath.Join(host, filepath.FromSlash(path)) + "." + ext
	if !filepath.IsLocal(rel) {
		return "", pagescrape.Errorf(pagescrape.EINVALID, "URL path escapes output directory: %s", rawURL)
	}
	return rel, nil
}

// Writer writes one export file per result under a base directory.
type Writer struct {
	baseDir  string
	exporter pagescrape.Exporter
}

// NewWriter creates a Writer that exports with e into baseDir.
func NewWriter(baseDir string, e pagescrape.Exporter) *Writer {
	return &Writer{baseDir: baseDir, exporter: e}
}

// Write exports r and returns the path written. The file appears
// atomically: it is written to a temporary file first and renamed.
func (w *Writer) Write(r *pagescrape.Result) (string, error) {
	relPath, err := URLToPath(r.URL, w.exporter.Extension())
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(w.baseDir, relPath)

	// Create parent directories
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, ".pagescrape-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if err := w.exporter.Export(tmp, r); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return "", err
	}

	return fullPath, nil
}
