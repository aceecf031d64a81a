// Package timeutil parses the week-bound arguments accepted on the
// command line.
package timeutil

import (
	"fmt"
	"time"
)

const dateOnly = "2006-01-02"

// ParseBound parses s as either a date (YYYY-MM-DD) or an RFC 3339
// timestamp. Dates expand to the start of day for isStart and to
// 23:59:59 otherwise, in loc.
func ParseBound(s string, loc *time.Location, isStart bool) (time.Time, error) {
	if t, err := time.ParseInLocation(dateOnly, s, loc); err == nil {
		if isStart {
			return t, nil
		}
		return t.Add(24*time.Hour - time.Second), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q: expected YYYY-MM-DD or RFC 3339", s)
	}
	return t.In(loc), nil
}
