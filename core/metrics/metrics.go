package metrics

import "time"

// Run outcomes.
const (
	OutcomeScheduled  = "scheduled"
	OutcomeInfeasible = "infeasible"
	OutcomeEmpty      = "empty"
)

// RunResult captures one scheduling run for observability purposes.
type RunResult struct {
	WeekStart      time.Time
	WeekEnd        time.Time
	Outcome        string
	Cost           int
	Meetings       int
	Slots          int
	Variables      int
	HardClauses    int
	SoftClauses    int
	SolveDuration  time.Duration
	AbsencesByTier map[string]int
	Time           time.Time
}

// RunSink records scheduling runs.
type RunSink interface {
	RecordRun(res RunResult) error
}

// NopSink implements RunSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunResult) error { return nil }
