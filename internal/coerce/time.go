package coerce

import "time"

func msToTime(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// DateStringToMs parses a date string in a handful of layouts venues use
// for "since"-style REST parameters into Unix milliseconds. Returns 0, false
// if none match.
func DateStringToMs(s string) (int64, bool) {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.000Z",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}
