package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "github.com/kbatisse/calsat/core/metrics"
)

// PromSink records scheduling runs in Prometheus metrics.
type PromSink struct {
	runs     *prometheus.CounterVec
	solve    prometheus.Histogram
	cost     prometheus.Gauge
	absences *prometheus.CounterVec
}

// NewPromSink registers scheduling metrics on the default Prometheus
// registerer. The exposition server is started separately.
func NewPromSink() (coremetrics.RunSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.RunSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_runs_total",
		Help: "Total number of scheduling runs",
	}, []string{"outcome"})
	solve := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_solve_seconds",
		Help:    "Time spent in the constraint solver",
		Buckets: prometheus.DefBuckets,
	})
	cost := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_last_cost",
		Help: "Total penalty of the most recent schedule",
	})
	absences := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_absences_total",
		Help: "Total number of scheduled absences by penalty tier",
	}, []string{"tier"})

	if err := reg.Register(runs); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			runs = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(solve); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			solve = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(cost); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			cost = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(absences); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			absences = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{runs: runs, solve: solve, cost: cost, absences: absences}, nil
}

// RecordRun updates counters and gauges for one scheduling run.
func (s *PromSink) RecordRun(res coremetrics.RunResult) error {
	s.runs.WithLabelValues(res.Outcome).Inc()
	s.solve.Observe(res.SolveDuration.Seconds())
	if res.Outcome == coremetrics.OutcomeScheduled {
		s.cost.Set(float64(res.Cost))
	}
	for tier, n := range res.AbsencesByTier {
		s.absences.WithLabelValues(tier).Add(float64(n))
	}
	return nil
}

// StartPromServer exposes the default registry on addr and blocks until
// ctx is cancelled.
func StartPromServer(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
