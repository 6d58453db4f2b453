// Package fields turns raw label field strings into their canonical printed forms.
// Every function here is pure and never fails: input that cannot be normalized is
// returned unchanged or replaced by a generated value.
package fields

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateStyle selects the canonical output form of a date.
type DateStyle int

const (
	// DateLabel prints DD.MM.YY, as used on labels.
	DateLabel DateStyle = iota
	// DateSummary prints DD/MM/YYYY, as used on detail and summary documents.
	DateSummary
)

var (
	isoDate   = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})(?:[T ].*)?$`)
	localDate = regexp.MustCompile(`^(\d{1,2})([/.\-])(\d{1,2})([/.\-])(\d{2}|\d{4})$`)
)

// ParseDate accepts YYYY-MM-DD (optionally followed by a time) or D/M/Y, D.M.Y and
// D-M-Y with a two- or four-digit year. Two-digit years are in the 2000s.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if m := isoDate.FindStringSubmatch(s); m != nil {
		return buildDate(m[1], m[2], m[3])
	}
	if m := localDate.FindStringSubmatch(s); m != nil {
		if m[2] != m[4] {
			return time.Time{}, false
		}
		year := m[5]
		if len(year) == 2 {
			year = "20" + year
		}
		return buildDate(year, m[3], m[1])
	}
	return time.Time{}, false
}

func buildDate(year, month, day string) (time.Time, bool) {
	y, _ := strconv.Atoi(year)
	mo, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)

	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	// Reject values time.Date would normalize (31.02 → 03.03).
	if t.Year() != y || int(t.Month()) != mo || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate renders raw in the requested style. Unparseable input is returned unchanged.
func FormatDate(raw string, style DateStyle) string {
	t, ok := ParseDate(raw)
	if !ok {
		return raw
	}
	switch style {
	case DateSummary:
		return fmt.Sprintf("%02d/%02d/%04d", t.Day(), int(t.Month()), t.Year())
	default:
		return fmt.Sprintf("%02d.%02d.%02d", t.Day(), int(t.Month()), t.Year()%100)
	}
}
