package history

import (
	"context"
	"fmt"
	"time"

	"github.com/kbatisse/calsat/core/schedule"
)

// RunRecord captures one scheduling run and its outcome.
type RunRecord struct {
	Timestamp time.Time        `json:"timestamp"`
	WeekStart time.Time        `json:"week_start"`
	WeekEnd   time.Time        `json:"week_end"`
	Outcome   string           `json:"outcome"`
	Cost      int              `json:"cost"`
	Report    *schedule.Report `json:"report,omitempty"`
}

// Query defines filters for retrieving records.
type Query struct {
	Start   time.Time
	End     time.Time
	Meeting string
	Outcome string
}

// Store persists RunRecords and supports querying.
type Store interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q Query) ([]RunRecord, error)
	Close() error
}

// Open creates a store for the given backend identifier.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "jsonl":
		return NewJSONLStore(path)
	case "sqlite":
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown history backend %q", backend)
	}
}

// matchesMeeting reports whether the record involves the named meeting.
func (r RunRecord) matchesMeeting(name string) bool {
	if r.Report == nil {
		return false
	}
	for _, ms := range r.Report.Meetings {
		if ms.Meeting == name {
			return true
		}
	}
	for _, a := range r.Report.Absences {
		if a.Meeting == name {
			return true
		}
	}
	return false
}
