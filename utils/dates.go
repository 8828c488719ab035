package utils

import (
	"fmt"
	"strings"
	"time"
)

// Accepted datetime layouts, most specific first. Clients send ISO strings
// with or without seconds/zone, and occasionally with a space separator.
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDateTime parses value against the accepted layouts and returns the
// time in UTC.
func ParseDateTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date format %q, use YYYY-MM-DDTHH:mm or YYYY-MM-DDTHH:mm:ssZ", value)
}
