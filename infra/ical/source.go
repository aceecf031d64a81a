package ical

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/kbatisse/calsat/core/model"
	"github.com/kbatisse/calsat/infra/logger"
)

// Event is one VEVENT extracted from a calendar.
type Event struct {
	UID      string
	Summary  string
	Start    time.Time
	End      time.Time
	Location string
}

// Source reads iCalendar data from local files or HTTP URLs.
type Source struct {
	client *http.Client
	log    logger.Logger
}

// NewSource returns a Source with a bounded HTTP timeout.
func NewSource() *Source {
	return &Source{
		client: &http.Client{Timeout: 10 * time.Second},
		log:    logger.New("ical-source"),
	}
}

// Events fetches and parses all VEVENTs from ref, which may be a file
// path or an http(s) URL. Times are interpreted in loc when the
// calendar gives floating times.
func (s *Source) Events(ctx context.Context, ref string, loc *time.Location) ([]Event, error) {
	r, closeFn, err := s.open(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return decodeEvents(r, loc, s.log)
}

func (s *Source) open(ctx context.Context, ref string) (io.Reader, func(), error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
		if err != nil {
			return nil, nil, err
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return nil, nil, fmt.Errorf("fetch calendar %s: %w", ref, err)
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, nil, fmt.Errorf("fetch calendar %s: status %d", ref, resp.StatusCode)
		}
		return resp.Body, func() { _ = resp.Body.Close() }, nil
	}
	f, err := os.Open(ref)
	if err != nil {
		return nil, nil, fmt.Errorf("open calendar %s: %w", ref, err)
	}
	return f, func() { _ = f.Close() }, nil
}

func decodeEvents(r io.Reader, loc *time.Location, log logger.Logger) ([]Event, error) {
	dec := ical.NewDecoder(r)
	var events []Event
	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode calendar: %w", err)
		}
		for _, comp := range cal.Children {
			if comp.Name != ical.CompEvent {
				continue
			}
			ev, err := parseEvent(comp, loc)
			if err != nil {
				log.Warnf("skipping event: %v", err)
				continue
			}
			events = append(events, ev)
		}
	}
	return events, nil
}

func parseEvent(comp *ical.Component, loc *time.Location) (Event, error) {
	var ev Event
	if p := comp.Props.Get(ical.PropUID); p != nil {
		ev.UID = p.Value
	}
	if p := comp.Props.Get(ical.PropSummary); p != nil {
		ev.Summary = p.Value
	}
	if p := comp.Props.Get(ical.PropLocation); p != nil {
		ev.Location = p.Value
	}
	startProp := comp.Props.Get(ical.PropDateTimeStart)
	endProp := comp.Props.Get(ical.PropDateTimeEnd)
	if startProp == nil || endProp == nil {
		return ev, fmt.Errorf("event %q missing start or end", ev.Summary)
	}
	start, err := startProp.DateTime(loc)
	if err != nil {
		return ev, fmt.Errorf("event %q start: %w", ev.Summary, err)
	}
	end, err := endProp.DateTime(loc)
	if err != nil {
		return ev, fmt.Errorf("event %q end: %w", ev.Summary, err)
	}
	ev.Start = start
	ev.End = end
	if ev.UID == "" {
		ev.UID = uuid.NewString()
	}
	return ev, nil
}

// BusyIntervals returns the busy intervals from ref that overlap week.
func (s *Source) BusyIntervals(ctx context.Context, ref string, week model.Interval, loc *time.Location) ([]model.Interval, error) {
	events, err := s.Events(ctx, ref, loc)
	if err != nil {
		return nil, err
	}
	var busy []model.Interval
	for _, ev := range events {
		iv := model.Interval{Start: ev.Start, End: ev.End}
		if !iv.Valid() {
			s.log.Warnf("ignoring busy event %q with non-positive duration", ev.Summary)
			continue
		}
		if iv.Overlaps(week) {
			busy = append(busy, iv)
		}
	}
	return busy, nil
}

// Windows returns every event in ref as a candidate scheduling window.
func (s *Source) Windows(ctx context.Context, ref string, loc *time.Location) ([]model.Window, error) {
	events, err := s.Events(ctx, ref, loc)
	if err != nil {
		return nil, err
	}
	windows := make([]model.Window, 0, len(events))
	for _, ev := range events {
		windows = append(windows, model.Window{
			ID:       ev.UID,
			Interval: model.Interval{Start: ev.Start, End: ev.End},
			Location: ev.Location,
		})
	}
	return windows, nil
}
