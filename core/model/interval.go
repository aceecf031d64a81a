package model

import (
	"fmt"
	"time"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether the two intervals share any instant.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Contains reports whether o lies entirely inside i.
func (i Interval) Contains(o Interval) bool {
	return !o.Start.Before(i.Start) && !o.End.After(i.End)
}

// Duration returns End minus Start.
func (i Interval) Duration() time.Duration { return i.End.Sub(i.Start) }

// Valid reports whether End is strictly after Start.
func (i Interval) Valid() bool { return i.End.After(i.Start) }

// String formats the interval for logs and reports.
func (i Interval) String() string {
	return fmt.Sprintf("%s to %s", i.Start.Format("2006-01-02 15:04"), i.End.Format("15:04 MST"))
}
