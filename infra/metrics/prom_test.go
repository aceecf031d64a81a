package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kbatisse/calsat/core/metrics"
)

func TestPromSink_RecordRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}

	res := coremetrics.RunResult{
		Outcome:        coremetrics.OutcomeScheduled,
		Cost:           7,
		SolveDuration:  20 * time.Millisecond,
		AbsencesByTier: map[string]int{"ordinary": 2, "key-attendee": 1},
	}
	if err := sink.RecordRun(res); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := sink.RecordRun(coremetrics.RunResult{Outcome: coremetrics.OutcomeInfeasible}); err != nil {
		t.Fatalf("record: %v", err)
	}

	ps := sink.(*PromSink)
	if got := testutil.ToFloat64(ps.runs.WithLabelValues(coremetrics.OutcomeScheduled)); got != 1 {
		t.Errorf("scheduled runs: got %v want 1", got)
	}
	if got := testutil.ToFloat64(ps.runs.WithLabelValues(coremetrics.OutcomeInfeasible)); got != 1 {
		t.Errorf("infeasible runs: got %v want 1", got)
	}
	if got := testutil.ToFloat64(ps.cost); got != 7 {
		t.Errorf("last cost: got %v want 7", got)
	}
	if got := testutil.ToFloat64(ps.absences.WithLabelValues("ordinary")); got != 2 {
		t.Errorf("ordinary absences: got %v want 2", got)
	}
}

func TestPromSink_AlreadyRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("second registration should reuse collectors: %v", err)
	}
}

func TestSinkFactory(t *testing.T) {
	sink, err := coremetrics.NewRunSink(nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := sink.(coremetrics.NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", sink)
	}
}
