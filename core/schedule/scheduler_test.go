package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbatisse/calsat/core/model"
	"github.com/kbatisse/calsat/core/slots"
	"github.com/kbatisse/calsat/core/solver"
)

var day = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(h int) time.Time { return day.Add(time.Duration(h) * time.Hour) }

func iv(h1, h2 int) model.Interval { return model.Interval{Start: at(h1), End: at(h2)} }

func window(id string, h1, h2 int) model.Window {
	return model.Window{ID: id, Interval: iv(h1, h2)}
}

// hourly gives non-overlapping one-hour slots, matching the worked examples.
func hourly() slots.Config {
	return slots.Config{MeetingDuration: time.Hour, Step: time.Hour}
}

func newScheduler(t *testing.T, sv solver.Solver) *Scheduler {
	t.Helper()
	s, err := New(hourly(), sv)
	require.NoError(t, err)
	return s
}

func exampleProblem() model.Problem {
	return model.Problem{
		WeekStart: day,
		WeekEnd:   day.Add(7 * 24 * time.Hour),
		Members: []model.Member{
			{Name: "A", Busy: []model.Interval{iv(9, 10)}},
			{Name: "B"},
			{Name: "C", Busy: []model.Interval{iv(13, 14)}},
		},
		Meetings: []model.Meeting{
			{Name: "sync", Members: []string{"A", "B", "C"}, KeyAttendees: []string{"C"}, Active: true},
		},
		Windows:   []model.Window{window("w1", 9, 12)},
		Penalties: model.DefaultPenalties(),
	}
}

func TestRunFindsZeroCostSlot(t *testing.T) {
	s := newScheduler(t, nil)
	rep, err := s.Run(context.Background(), exampleProblem())
	require.NoError(t, err)
	require.Len(t, rep.Meetings, 1)
	// 9:00 costs an absence for A; 10:00 and 11:00 are free for everyone.
	assert.Zero(t, rep.TotalPenalty)
	assert.Empty(t, rep.Absences)
	assert.True(t, rep.Meetings[0].Slot.Start.Hour() >= 10)
	assert.Equal(t, 3, rep.Attended)
	assert.InDelta(t, 1.0, rep.AttendanceRate(), 1e-9)
}

func TestRunAcceptsCheapAbsence(t *testing.T) {
	p := exampleProblem()
	p.Windows = []model.Window{window("w1", 9, 10)}
	s := newScheduler(t, nil)
	rep, err := s.Run(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.TotalPenalty)
	require.Len(t, rep.Absences, 1)
	assert.Equal(t, "A", rep.Absences[0].Member)
	assert.Equal(t, "ordinary", rep.Absences[0].Tier())
	assert.Equal(t, 9, rep.Meetings[0].Slot.Start.Hour())
}

func TestRunExactlyOneSlotPerMeeting(t *testing.T) {
	p := exampleProblem()
	p.Meetings = append(p.Meetings, model.Meeting{
		Name: "retro", Members: []string{"B"}, Active: true,
	})
	s := newScheduler(t, nil)
	rep, err := s.Run(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, rep.Meetings, 2)
	seen := map[string]bool{}
	for _, ms := range rep.Meetings {
		require.NotEmpty(t, ms.Slot.ID)
		seen[ms.Meeting] = true
	}
	assert.Len(t, seen, 2)
}

func TestRunSiblingSlotsNeverOverlap(t *testing.T) {
	p := exampleProblem()
	p.Meetings = []model.Meeting{
		{Name: "m1", Members: []string{"B"}, Active: true},
		{Name: "m2", Members: []string{"B"}, Active: true},
		{Name: "m3", Members: []string{"B"}, Active: true},
	}
	p.Windows = []model.Window{window("w1", 9, 12)}
	s := newScheduler(t, nil)
	rep, err := s.Run(context.Background(), p)
	require.NoError(t, err)
	for i := 0; i < len(rep.Meetings); i++ {
		for j := i + 1; j < len(rep.Meetings); j++ {
			assert.False(t, rep.Meetings[i].Slot.Overlaps(rep.Meetings[j].Slot.Interval),
				"meetings %s and %s overlap", rep.Meetings[i].Meeting, rep.Meetings[j].Meeting)
		}
	}
}

func TestRunCrossWindowCoincidenceAllowed(t *testing.T) {
	p := model.Problem{
		WeekStart: day,
		WeekEnd:   day.Add(24 * time.Hour),
		Members:   []model.Member{{Name: "D"}},
		Meetings: []model.Meeting{
			{Name: "m1", Members: []string{"D"}, Active: true},
			{Name: "m2", Members: []string{"D"}, Active: true},
		},
		Windows:   []model.Window{window("w1", 9, 10), window("w2", 9, 10)},
		Penalties: model.DefaultPenalties(),
	}
	s := newScheduler(t, nil)
	rep, err := s.Run(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, rep.Meetings, 2)
	// Both meetings land on 9:00 in their own windows; legal, but the
	// shared attendee is reported as double-booked.
	assert.Equal(t, rep.Meetings[0].Slot.Start, rep.Meetings[1].Slot.Start)
	require.Len(t, rep.DoubleBookings, 1)
	assert.Equal(t, "D", rep.DoubleBookings[0].Member)
}

func TestRunMandatoryAttendanceRespected(t *testing.T) {
	p := exampleProblem()
	// A is busy 9-10; mandate A and shrink the window so only 9:00 and
	// 10:00 exist. 10:00 must win even though both are otherwise equal.
	p.Windows = []model.Window{window("w1", 9, 11)}
	p.Fixed = []model.FixedConstraint{{Meeting: "sync", Member: "A"}}
	s := newScheduler(t, nil)
	rep, err := s.Run(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 10, rep.Meetings[0].Slot.Start.Hour())
}

func TestRunInfeasibleMandates(t *testing.T) {
	p := exampleProblem()
	p.Members[0].Busy = []model.Interval{iv(9, 11)}  // A busy 9-11
	p.Members[2].Busy = []model.Interval{iv(11, 12)} // C busy 11-12
	p.Fixed = []model.FixedConstraint{
		{Meeting: "sync", Member: "A"},
		{Meeting: "sync", Member: "C"},
	}
	s := newScheduler(t, nil)
	_, err := s.Run(context.Background(), p)
	var inf *InfeasibleError
	require.True(t, errors.As(err, &inf), "want InfeasibleError, got %v", err)
	require.NotEmpty(t, inf.Conflicts)
	assert.Equal(t, "sync", inf.Conflicts[0].Meeting)
}

func TestRunEmptyProblem(t *testing.T) {
	p := exampleProblem()
	p.Meetings[0].Active = false
	s := newScheduler(t, nil)
	_, err := s.Run(context.Background(), p)
	assert.ErrorIs(t, err, ErrEmptyProblem)

	p = exampleProblem()
	p.Windows = nil
	_, err = s.Run(context.Background(), p)
	assert.ErrorIs(t, err, ErrEmptyProblem)
}

func TestRunDropsInvalidWindow(t *testing.T) {
	p := exampleProblem()
	p.Windows = append(p.Windows, model.Window{ID: "bad", Interval: iv(12, 12)})
	s := newScheduler(t, nil)
	rep, err := s.Run(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "w1", rep.Meetings[0].Slot.WindowID)
}

func TestRunIdempotentCost(t *testing.T) {
	s := newScheduler(t, nil)
	p := exampleProblem()
	p.Windows = []model.Window{window("w1", 9, 10)}
	first, err := s.Run(context.Background(), p)
	require.NoError(t, err)
	second, err := s.Run(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, first.TotalPenalty, second.TotalPenalty)
}

func TestRunMonotonicKeyAttendeeWeight(t *testing.T) {
	base := func(keyWeight int) model.Problem {
		return model.Problem{
			WeekStart: day,
			WeekEnd:   day.Add(24 * time.Hour),
			Members: []model.Member{
				// At 9:00 the key attendee is free but two ordinary members
				// are busy; at 10:00 it is the other way around.
				{Name: "A", Busy: []model.Interval{iv(9, 10)}},
				{Name: "B", Busy: []model.Interval{iv(9, 10)}},
				{Name: "C", Busy: []model.Interval{iv(10, 11)}},
			},
			Meetings: []model.Meeting{
				{Name: "sync", Members: []string{"A", "B", "C"}, KeyAttendees: []string{"C"}, Active: true},
			},
			Windows: []model.Window{window("w1", 9, 11)},
			Penalties: model.PenaltyConfig{
				KeyAttendeeAbsence:    keyWeight,
				KeyMeetingAbsence:     5,
				RequiredMemberAbsence: 1,
			},
		}
	}
	attends := func(w int) bool {
		s := newScheduler(t, nil)
		rep, err := s.Run(context.Background(), base(w))
		require.NoError(t, err)
		for _, a := range rep.Absences {
			if a.Member == "C" {
				return false
			}
		}
		return true
	}
	// Cheap key-attendee weight sacrifices C; raising it never makes C's
	// attendance worse.
	assert.False(t, attends(1))
	assert.True(t, attends(100))
}

type stubSolver struct {
	res solver.Result
	err error
}

func (s stubSolver) Solve(solver.Instance) (solver.Result, error) { return s.res, s.err }

func TestRunDetectsEncodingDefect(t *testing.T) {
	// A solver claiming success with an empty model trips the decode-time
	// exactly-one check.
	s := newScheduler(t, stubSolver{res: solver.Result{Model: map[string]bool{}}})
	_, err := s.Run(context.Background(), exampleProblem())
	var inv *InvariantError
	require.True(t, errors.As(err, &inv), "want InvariantError, got %v", err)
}

func TestRunSurfacesSolverUnsat(t *testing.T) {
	s := newScheduler(t, stubSolver{err: solver.ErrUnsat})
	_, err := s.Run(context.Background(), exampleProblem())
	var inf *InfeasibleError
	require.True(t, errors.As(err, &inf))
	assert.Empty(t, inf.Conflicts)
}
