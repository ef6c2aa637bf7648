package pagescrape

import "strings"

// Mode selects which extraction strategy runs.
type Mode string

// Supported extraction modes.
const (
	ModeText   Mode = "text"
	ModeTables Mode = "tables"
	ModeLinks  Mode = "links"
	ModeImages Mode = "images"
	ModeFull   Mode = "full"
)

// Modes returns every supported mode in display order.
func Modes() []Mode {
	return []Mode{ModeText, ModeTables, ModeLinks, ModeImages, ModeFull}
}

// Valid reports whether m is one of the supported modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeText, ModeTables, ModeLinks, ModeImages, ModeFull:
		return true
	}
	return false
}

// ParseMode converts a case-insensitive mode name to a Mode.
// An empty name defaults to ModeText.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ModeText, nil
	}
	m := Mode(s)
	if !m.Valid() {
		return "", Errorf(EINVALID, "unsupported scrape type: %s", s)
	}
	return m, nil
}
