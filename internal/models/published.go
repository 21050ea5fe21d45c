package models

import (
	"strings"
	"time"
)

// publishedLayouts covers the timestamp shapes observed across feeds and the
// aggregation API. Naive layouts (no zone) are interpreted as UTC.
var publishedLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParsePublished interprets a free-form publish timestamp. Textual GMT/UTC
// suffixes are mapped to a zero offset before parsing; naive timestamps are
// assumed UTC. The second return is false when nothing matched, in which case
// the zero time is returned so unparseable records sort last.
func ParsePublished(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range []string{" GMT", " UTC"} {
		if strings.HasSuffix(s, layout) {
			s = strings.TrimSuffix(s, layout) + " +0000"
			break
		}
	}

	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
