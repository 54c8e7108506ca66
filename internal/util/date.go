package util

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts are the accepted date_added formats, tried in order.
var dateLayouts = []string{
	"01/02/2006",
	"2006-01-02",
}

// ParseDate parses a calendar date in MM/DD/YYYY or YYYY-MM-DD form.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: want MM/DD/YYYY or YYYY-MM-DD", s)
}

// AddedWithin reports whether date falls within the trailing window of days
// ending at now. Unparseable dates are never within the window.
func AddedWithin(date string, days int, now time.Time) bool {
	t, err := ParseDate(date)
	if err != nil {
		return false
	}
	threshold := now.AddDate(0, 0, -days)
	return !t.Before(threshold)
}

// FormatMinutes renders an optional minutes value as "N min" or
// "Unspecified".
func FormatMinutes(minutes *int) string {
	if minutes == nil {
		return "Unspecified"
	}
	return fmt.Sprintf("%d min", *minutes)
}
