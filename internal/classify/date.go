package classify

import (
	"time"
)

// millisecondThreshold separates epoch-seconds from epoch-milliseconds
// timestamps by magnitude; anything above it is treated as milliseconds.
const millisecondThreshold = 1e12

// dateLayouts are tried in order against string inputs.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// NormalizeDate parses the loosely typed date values vendors return: epoch
// seconds or milliseconds (as JSON numbers), ISO-8601 strings, or plain
// YYYY-MM-DD / YYYY/MM/DD. Unparseable input yields ok=false, never an error.
// The result is truncated to a UTC date.
func NormalizeDate(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return toDate(v), true
	case float64:
		return fromEpoch(v), true
	case int64:
		return fromEpoch(float64(v)), true
	case int:
		return fromEpoch(float64(v)), true
	case string:
		if v == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return toDate(t), true
			}
		}
		// ISO strings with sub-second precision or unusual offsets still
		// carry a parseable date prefix.
		if len(v) >= 10 {
			if t, err := time.Parse("2006-01-02", v[:10]); err == nil {
				return toDate(t), true
			}
		}
	}
	return time.Time{}, false
}

func fromEpoch(v float64) time.Time {
	if v > millisecondThreshold {
		v /= 1000
	}
	return toDate(time.Unix(int64(v), 0))
}

func toDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
