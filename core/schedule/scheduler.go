// Package schedule orchestrates one scheduling run: expand windows into
// slots, encode the weighted satisfiability instance, solve it once, decode
// the optimum back into a schedule and report who attends what. The
// scheduler holds no state across runs.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kbatisse/calsat/core/encode"
	"github.com/kbatisse/calsat/core/logger"
	coremetrics "github.com/kbatisse/calsat/core/metrics"
	"github.com/kbatisse/calsat/core/model"
	"github.com/kbatisse/calsat/core/slots"
	"github.com/kbatisse/calsat/core/solver"
)

// Scheduler runs the build/solve/decode pipeline.
type Scheduler struct {
	slotCfg slots.Config
	solver  solver.Solver
	log     logger.Logger
	sink    coremetrics.RunSink
	now     func() time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithSink attaches a run sink recording outcome, cost and solve latency.
func WithSink(sink coremetrics.RunSink) Option {
	return func(s *Scheduler) { s.sink = sink }
}

// WithLogger sets the scheduler's logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Scheduler) { s.log = log }
}

// New creates a Scheduler. A nil solver defaults to the gophersat engine.
func New(slotCfg slots.Config, sv solver.Solver, opts ...Option) (*Scheduler, error) {
	if err := slotCfg.Validate(); err != nil {
		return nil, fmt.Errorf("slot config: %w", err)
	}
	if sv == nil {
		sv = solver.New()
	}
	s := &Scheduler{
		slotCfg: slotCfg,
		solver:  sv,
		sink:    coremetrics.NopSink{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run executes one scheduling run. Invalid windows are dropped with a
// warning. ErrEmptyProblem means there was nothing to schedule; an
// *InfeasibleError means no schedule satisfies the hard constraints. The
// solve itself is a single blocking call with no cancellation; ctx is only
// consulted between stages.
func (s *Scheduler) Run(ctx context.Context, p model.Problem) (*Report, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid problem: %w", err)
	}

	generated := slots.ExpandAll(p.Windows, s.slotCfg, s.log)
	em := encode.Build(p, generated)
	st := em.Stats()

	if em.Empty() {
		s.record(p, st, coremetrics.OutcomeEmpty, 0, 0, nil)
		return nil, ErrEmptyProblem
	}
	if len(em.Conflicts) > 0 {
		s.record(p, st, coremetrics.OutcomeInfeasible, 0, 0, nil)
		return nil, &InfeasibleError{Conflicts: em.Conflicts}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.log != nil {
		s.log.Debugw("solving", map[string]any{
			"meetings": st.Meetings,
			"slots":    st.Slots,
			"vars":     st.Variables,
			"hard":     st.HardClauses,
			"soft":     st.SoftClauses,
		})
	}
	start := s.now()
	res, err := s.solver.Solve(em.Instance)
	elapsed := s.now().Sub(start)
	if err != nil {
		if errors.Is(err, solver.ErrUnsat) {
			s.record(p, st, coremetrics.OutcomeInfeasible, 0, elapsed, nil)
			return nil, &InfeasibleError{}
		}
		return nil, fmt.Errorf("solve: %w", err)
	}

	asn, weights, err := decode(p, em, res)
	if err != nil {
		return nil, err
	}
	rep := buildReport(asn, p, weights)
	s.record(p, st, coremetrics.OutcomeScheduled, rep.TotalPenalty, elapsed, rep)
	if s.log != nil {
		s.log.Infof("scheduled %d meetings, total penalty %d, %d absences",
			len(rep.Meetings), rep.TotalPenalty, len(rep.Absences))
	}
	return rep, nil
}

func (s *Scheduler) record(p model.Problem, st encode.Stats, outcome string, cost int, solve time.Duration, rep *Report) {
	res := coremetrics.RunResult{
		WeekStart:     p.WeekStart,
		WeekEnd:       p.WeekEnd,
		Outcome:       outcome,
		Cost:          cost,
		Meetings:      st.Meetings,
		Slots:         st.Slots,
		Variables:     st.Variables,
		HardClauses:   st.HardClauses,
		SoftClauses:   st.SoftClauses,
		SolveDuration: solve,
		Time:          s.now(),
	}
	if rep != nil {
		res.AbsencesByTier = rep.AbsencesByTier()
	}
	if err := s.sink.RecordRun(res); err != nil && s.log != nil {
		s.log.Errorf("record run: %v", err)
	}
}
