package sources

import (
	"strings"
	"time"
)

var paperDateLayouts = []string{
	"2006年1月2日 15:04",
	"2006年1月2日15:04",
	"2006年1月2日",
	"2006-1-2 15:04",
	"2006-1-2",
}

var listDateLayouts = []string{
	"2006-1-2",
	"2006/1/2",
	"2006年1月2日",
}

// parseLocalDate tries each layout against value in loc. The whole string is tried
// first, then its first whitespace-separated token, so trailing weekdays or labels
// do not defeat an otherwise valid date.
func parseLocalDate(value string, loc *time.Location, layouts []string) (time.Time, bool) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return time.Time{}, false
	}

	candidates := []string{strings.Join(fields, " ")}
	if len(fields) > 1 {
		candidates = append(candidates, fields[0])
	}

	for _, candidate := range candidates {
		for _, layout := range layouts {
			if t, err := time.ParseInLocation(layout, candidate, loc); err == nil {
				return t, true
			}
		}
	}

	return time.Time{}, false
}

// atHour returns t's calendar day in loc at hour:00.
func atHour(t time.Time, loc *time.Location, hour int) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, loc)
}
