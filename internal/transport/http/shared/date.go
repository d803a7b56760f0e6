package shared

import (
	"errors"
	"time"
)

// dateLayouts are the accepted wire formats for date fields, tried in
// order. Full timestamps win over bare dates so a zone offset survives.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

var errBadDate = errors.New("unrecognised date format")

// ParseDate parses an optional date field. Empty input yields a zero time
// so callers can treat absent and present fields uniformly.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, errBadDate
}
