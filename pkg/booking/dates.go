package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date is a parsed appointment date.
type Date struct {
	Year  int
	Month int
	Day   int
}

// ParseDate accepts MM/DD/YYYY or YYYY-MM-DD. The second return value is
// false for anything unparseable; callers treat that as a soft failure.
func ParseDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, false
	}

	layouts := []string{"01/02/2006", "1/2/2006", "2006-01-02"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, true
		}
	}
	return Date{}, false
}

// MonthAbbrev returns the three-letter month abbreviation ("Sep") used by
// the calendar widget's day labels.
func (d Date) MonthAbbrev() string {
	if d.Month < 1 || d.Month > 12 {
		return ""
	}
	return time.Month(d.Month).String()[:3]
}

// CalendarDayPattern builds a case-insensitive pattern matching the calendar
// cell for this date, e.g. "Sep 5" inside "Fri, Sep 5" or "September 5".
// The trailing boundary keeps "Sep 5" from matching "Sep 15".
func (d Date) CalendarDayPattern() string {
	abbrev := d.MonthAbbrev()
	if abbrev == "" || d.Day < 1 || d.Day > 31 {
		return ""
	}
	return fmt.Sprintf(`(?i)%s[a-z]*\.?,?\s+%d(\b|$)`, abbrev, d.Day)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// parseClock pulls hour, minute and meridiem out of a loose clock string
// like "10:00 AM", "2pm" or "14:00".
func parseClock(s string) (hour, minute int, ok bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, 0, false
	}

	// The displayed labels repeat 1-12 with their own meridiem suffix, so the
	// requested meridiem plays no part in the match key.
	for _, suffix := range []string{"a.m.", "p.m.", "am", "pm"} {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}

	parts := strings.SplitN(s, ":", 2)
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	m := 0
	if len(parts) == 2 {
		m, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, 0, false
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}

	// Fold 24-hour input down to the displayed 12-hour digits.
	if h > 12 {
		h -= 12
	}
	return h, m, true
}

// NormalizeStartTime converts a requested start time into the key used to
// match a displayed window label: hour without leading zero, colon, 2-digit
// minute, no meridiem. "10:00 AM" -> "10:00", "2 PM" -> "2:00".
func NormalizeStartTime(s string) (string, bool) {
	h, m, ok := parseClock(s)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%d:%02d", h, m), true
}

var dashGlyphs = strings.NewReplacer(
	"–", "-", // en dash
	"—", "-", // em dash
	"−", "-", // minus sign
	" ", " ", // nbsp
)

// MatchesWindowStart reports whether a rendered time-window label (e.g.
// "10:00 - 12:00pm") starts with the given start key. The match is anchored
// to the window's start boundary so "2:00" never matches the tail of
// "12:00 - 2:00pm", and "10:00" never matches "10:30 - 12:30pm".
func MatchesWindowStart(label, startKey string) bool {
	if startKey == "" {
		return false
	}
	norm := strings.TrimSpace(dashGlyphs.Replace(label))
	norm = strings.TrimPrefix(norm, "0") // tolerate zero-padded hours
	if !strings.HasPrefix(norm, startKey) {
		return false
	}
	rest := norm[len(startKey):]
	if rest == "" {
		return true
	}
	// The character after the key must not extend the clock value.
	c := rest[0]
	return !(c >= '0' && c <= '9') && c != ':'
}

// FindWindowStart returns the index of the first label whose start boundary
// matches the requested start time, or -1.
func FindWindowStart(labels []string, requestedStart string) int {
	key, ok := NormalizeStartTime(requestedStart)
	if !ok {
		return -1
	}
	for i, label := range labels {
		if MatchesWindowStart(label, key) {
			return i
		}
	}
	return -1
}
