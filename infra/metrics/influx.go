package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kbatisse/calsat/core/metrics"
	"github.com/kbatisse/calsat/infra/logger"
)

// InfluxSink writes scheduling runs to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.RunSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes one scheduling run as a point.
func (s *InfluxSink) RecordRun(res coremetrics.RunResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ts := res.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	p := write.NewPointWithMeasurement("schedule_run").
		AddTag("outcome", res.Outcome).
		AddTag("component", "scheduler").
		AddField("cost", res.Cost).
		AddField("meetings", res.Meetings).
		AddField("slots", res.Slots).
		AddField("variables", res.Variables).
		AddField("hard_clauses", res.HardClauses).
		AddField("soft_clauses", res.SoftClauses).
		AddField("solve_seconds", res.SolveDuration.Seconds()).
		SetTime(ts)
	if err := s.writeAPI.WritePoint(ctx, p); err != nil {
		return err
	}
	for tier, n := range res.AbsencesByTier {
		ap := write.NewPointWithMeasurement("schedule_absences").
			AddTag("tier", tier).
			AddField("count", n).
			SetTime(ts)
		if err := s.writeAPI.WritePoint(ctx, ap); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}
