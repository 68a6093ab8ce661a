// Package recency decides whether a publish-time label falls inside the last 24 hours.
package recency

import (
	"strings"
	"time"
)

// Window is the look-back period that counts as recent.
const Window = 24 * time.Hour

// layouts are tried in order; the first one that parses wins.
var layouts = []string{
	"Mon, 02 Jan 2006 15:04:05 MST",
	"Mon, 02 Jan 2006 15:04:05 GMT",
	"Mon, 02 Jan 2006 15:04:05 -0700",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
}

// Parse returns the wall-clock time encoded in text using the first matching layout.
// The zone carried by the text is dropped; the result is anchored in loc.
func Parse(text string, loc *time.Location) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range layouts {
		t, err := time.Parse(layout, text)
		if err != nil {
			continue
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc), true
	}
	return time.Time{}, false
}

// IsRecent reports whether text names a moment no older than Window before now.
// Unparseable input is never recent.
func IsRecent(text string, now time.Time) bool {
	published, ok := Parse(text, time.UTC)
	if !ok {
		return false
	}
	// compare wall clocks so a DST shift in now's zone does not move the cutoff
	wall := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), time.UTC)
	return !published.Before(wall.Add(-Window))
}
