package archive

import (
	"strings"
	"time"
)

// publishTimeLayouts are tried in order. The leading entries match the
// formats sites actually emit in article:published_time and time[datetime];
// the tail is a relaxed fallback for free-form bylines.
var publishTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"January 2, 2006 15:04",
	"January 2, 2006",
	"Jan 2, 2006",
	"2006-01-02",
	"02.01.2006",
	"01/02/2006",
}

// ParsePublishTime parses a publish timestamp from an article page.
// Unparseable values yield nil rather than an error; a missing publish time
// is an expected condition, not a failure.
func ParsePublishTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range publishTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}
