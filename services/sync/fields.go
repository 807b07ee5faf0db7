package sync

import (
	"strings"
	"time"
	"unicode/utf8"

	"argosync/lib/timezone"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"
)

// Kind selects how a mapped value is rendered into a Notion property.
type Kind int

const (
	KindTitle Kind = iota
	KindText
	KindNumber
	KindSelect
	KindDate
	KindCheckbox
)

// Field maps one upstream value onto one Notion property through an
// ordered candidate chain, first present candidate wins.
type Field struct {
	Property   string
	Kind       Kind
	Candidates []string

	// bulletin bodies arrive as html
	StripHTML bool
	// fold near-identical subject spellings into one select option
	Normalize bool
	// cap for rendered titles, runes, 0 disables
	Truncate int
	Default  string
}

// the portal emits at least these four shapes depending on endpoint
// and build
var dateFormats = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, format := range dateFormats {
		t, err := time.ParseInLocation(format, raw, timezone.Location)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func stripHTML(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return raw
	}
	return strings.TrimSpace(doc.Text())
}

func truncate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max-1]) + "…"
}

const subjectSimilarity = 0.97

// normalizeSubject folds value onto an already-seen spelling when the
// two are near-identical, so upstream case and diacritic drift doesn't
// split the select options. New spellings are remembered.
func (s *Service) normalizeSubject(value string) string {
	canonical := strings.TrimSpace(value)
	if canonical == "" {
		return ""
	}
	for _, seen := range s.subjects {
		if matchr.JaroWinkler(strings.ToLower(seen), strings.ToLower(canonical), true) >= subjectSimilarity {
			return seen
		}
	}
	s.subjects = append(s.subjects, canonical)
	return canonical
}
