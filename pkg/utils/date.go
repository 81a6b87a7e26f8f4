package utils

import (
	"regexp"
	"strings"
	"time"
)

// Layouts seen across publisher feeds and model output. Order matters: the
// most specific formats come first.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"2006/01/02",
	"01/02/2006",
	"2006-01",
	"January 2006",
	"Jan 2006",
}

var isoMonthPrefix = regexp.MustCompile(`^\d{4}-\d{2}`)

// NormalizeDate parses a free-form date string and returns it in ISO form
// (YYYY-MM-DD, or YYYY-MM when only month precision was given). Unparseable
// input is returned unchanged: values like "Q3 2024" carry information that
// must not be invented away.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if layout == "2006-01" || layout == "January 2006" || layout == "Jan 2006" {
			return t.Format("2006-01")
		}
		return t.Format("2006-01-02")
	}
	return s
}

// MonthKey truncates a date string to year-month granularity. It returns an
// empty string when the input has no recognizable year-month component.
func MonthKey(s string) string {
	normalized := NormalizeDate(s)
	if m := isoMonthPrefix.FindString(normalized); m != "" {
		return m
	}
	return ""
}
