package intent

import (
	"strings"
	"time"

	"github.com/pbaille/memo/internal/domain"
)

var timestampLayouts = []string{
	domain.TimestampLayout,
	domain.DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseTimestamp reads a client supplied timestamp in the location of now.
// Unparseable values degrade to now with ok == false so the caller can log
// the recovery; an empty value is not a failure.
func ParseTimestamp(s string, now time.Time) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now, true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, true
		}
	}
	return now, false
}
