// Package slots expands potential-times windows into discrete candidate
// slots. Each slot inherits the identity and location of the window it was
// derived from; slots sharing a window are siblings.
package slots

import (
	"errors"
	"fmt"
	"time"

	"github.com/kbatisse/calsat/core/logger"
	"github.com/kbatisse/calsat/core/model"
)

// ErrInvalidWindow reports a window whose end is not after its start.
var ErrInvalidWindow = errors.New("invalid window")

// Config controls slot expansion. Step is the distance between consecutive
// slot starts inside a window; with a step smaller than the duration the
// generated siblings overlap and the encoder keeps them mutually exclusive.
type Config struct {
	MeetingDuration time.Duration
	Step            time.Duration
}

// DefaultConfig returns one-hour meetings stepped every half hour, with
// slot starts aligned to the half hour.
func DefaultConfig() Config {
	return Config{MeetingDuration: time.Hour, Step: 30 * time.Minute}
}

// Validate checks the expansion parameters.
func (c Config) Validate() error {
	if c.MeetingDuration <= 0 {
		return fmt.Errorf("meeting duration must be positive, got %s", c.MeetingDuration)
	}
	if c.Step <= 0 {
		return fmt.Errorf("slot step must be positive, got %s", c.Step)
	}
	if c.Step > c.MeetingDuration {
		return fmt.Errorf("slot step %s exceeds meeting duration %s", c.Step, c.MeetingDuration)
	}
	return nil
}

// Expand generates the ordered sequence of slots whose span is fully
// contained in w. The first slot start is rounded up to the next step
// boundary past the hour. A window shorter than one meeting duration
// contributes zero slots; a window with end <= start is an error.
func Expand(w model.Window, cfg Config) ([]model.Slot, error) {
	if !w.Valid() {
		return nil, fmt.Errorf("%w: %q ends at %s, before start %s",
			ErrInvalidWindow, w.ID, w.End.Format(time.RFC3339), w.Start.Format(time.RFC3339))
	}
	var out []model.Slot
	i := 0
	for s := alignStart(w.Start, cfg.Step); !s.Add(cfg.MeetingDuration).After(w.End); s = s.Add(cfg.Step) {
		out = append(out, model.Slot{
			ID:       fmt.Sprintf("%s#%d", w.ID, i),
			WindowID: w.ID,
			Interval: model.Interval{Start: s, End: s.Add(cfg.MeetingDuration)},
			Location: w.Location,
		})
		i++
	}
	return out, nil
}

// ExpandAll expands every window, dropping invalid ones with a warning
// instead of failing the run.
func ExpandAll(windows []model.Window, cfg Config, log logger.Logger) []model.Slot {
	var out []model.Slot
	for _, w := range windows {
		ss, err := Expand(w, cfg)
		if err != nil {
			if log != nil {
				log.Warnf("dropping window %s: %v", w.ID, err)
			}
			continue
		}
		out = append(out, ss...)
	}
	return out
}

// alignStart rounds t up to the next multiple of step past the local
// wall-clock hour. Truncating absolute time would shift the grid in zones
// whose UTC offset is not a multiple of step.
func alignStart(t time.Time, step time.Duration) time.Time {
	hour := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	off := t.Sub(hour)
	if r := off % step; r != 0 {
		off += step - r
	}
	return hour.Add(off)
}
