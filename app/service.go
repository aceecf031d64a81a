package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbatisse/calsat/config"
	coremetrics "github.com/kbatisse/calsat/core/metrics"
	"github.com/kbatisse/calsat/core/model"
	"github.com/kbatisse/calsat/core/schedule"
	"github.com/kbatisse/calsat/core/slots"
	"github.com/kbatisse/calsat/infra/history"
	"github.com/kbatisse/calsat/infra/ical"
	"github.com/kbatisse/calsat/infra/logger"
	_ "github.com/kbatisse/calsat/infra/metrics"
)

// Service orchestrates calendar loading, scheduling and persistence.
type Service struct {
	cfg    *config.Config
	log    logger.Logger
	sched  *schedule.Scheduler
	source *ical.Source
	store  history.Store
	loc    *time.Location
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}

	sink, err := coremetrics.NewRunSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}

	store, err := history.Open(cfg.History.Backend, cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}

	slotCfg := slots.Config{
		MeetingDuration: cfg.MeetingDuration(),
		Step:            cfg.SlotStep(),
	}
	sched, err := schedule.New(slotCfg, nil,
		schedule.WithSink(sink),
		schedule.WithLogger(logger.New("scheduler")))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("scheduler: %w", err)
	}

	return &Service{
		cfg:    cfg,
		log:    logg,
		sched:  sched,
		source: ical.NewSource(),
		store:  store,
		loc:    loc,
	}, nil
}

// Location returns the configured timezone.
func (s *Service) Location() *time.Location { return s.loc }

// Schedule builds the problem for the given week and runs the solver.
// Penalties override the configured tier weights. The run is appended
// to the history store whatever its outcome.
func (s *Service) Schedule(ctx context.Context, weekStart, weekEnd time.Time, pens model.PenaltyConfig) (*schedule.Report, error) {
	problem, err := s.buildProblem(ctx, weekStart, weekEnd, pens)
	if err != nil {
		return nil, err
	}

	rep, runErr := s.sched.Run(ctx, *problem)

	rec := history.RunRecord{
		Timestamp: time.Now(),
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		Report:    rep,
	}
	switch {
	case runErr == nil:
		rec.Outcome = coremetrics.OutcomeScheduled
		rec.Cost = rep.TotalPenalty
	case errors.Is(runErr, schedule.ErrEmptyProblem):
		rec.Outcome = coremetrics.OutcomeEmpty
	default:
		var infErr *schedule.InfeasibleError
		if !errors.As(runErr, &infErr) {
			return nil, runErr
		}
		rec.Outcome = coremetrics.OutcomeInfeasible
	}
	if err := s.store.Append(ctx, rec); err != nil {
		s.log.Errorf("history append: %v", err)
	}
	return rep, runErr
}

// Slots returns the candidate slots the generator would produce for the
// given week, without solving.
func (s *Service) Slots(ctx context.Context, weekStart, weekEnd time.Time) ([]model.Slot, error) {
	windows, err := s.source.Windows(ctx, s.cfg.Windows.Calendar, s.loc)
	if err != nil {
		return nil, fmt.Errorf("windows calendar: %w", err)
	}
	slotCfg := slots.Config{
		MeetingDuration: s.cfg.MeetingDuration(),
		Step:            s.cfg.SlotStep(),
	}
	week := model.Interval{Start: weekStart, End: weekEnd}
	var out []model.Slot
	for _, sl := range slots.ExpandAll(windows, slotCfg, s.log) {
		if week.Contains(sl.Interval) {
			out = append(out, sl)
		}
	}
	return out, nil
}

// History returns past runs matching the query.
func (s *Service) History(ctx context.Context, q history.Query) ([]history.RunRecord, error) {
	return s.store.Query(ctx, q)
}

// Close releases resources held by the service.
func (s *Service) Close() error { return s.store.Close() }

func (s *Service) buildProblem(ctx context.Context, weekStart, weekEnd time.Time, pens model.PenaltyConfig) (*model.Problem, error) {
	windows, err := s.source.Windows(ctx, s.cfg.Windows.Calendar, s.loc)
	if err != nil {
		return nil, fmt.Errorf("windows calendar: %w", err)
	}

	week := model.Interval{Start: weekStart, End: weekEnd}
	members := make([]model.Member, len(s.cfg.Members))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		fetchErr error
	)
	for i, mc := range s.cfg.Members {
		members[i] = model.Member{Name: mc.Name, CalendarID: mc.Calendar}
		wg.Add(1)
		go func(i int, mc config.MemberConfig) {
			defer wg.Done()
			busy, err := s.source.BusyIntervals(ctx, mc.Calendar, week, s.loc)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if fetchErr == nil {
					fetchErr = fmt.Errorf("calendar for %s: %w", mc.Name, err)
				}
				return
			}
			members[i].Busy = busy
		}(i, mc)
	}
	wg.Wait()
	if fetchErr != nil {
		return nil, fetchErr
	}

	return &model.Problem{
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		Members:   members,
		Meetings:  s.cfg.ModelMeetings(),
		Windows:   windows,
		Fixed:     s.cfg.ModelFixed(),
		Penalties: pens,
	}, nil
}
