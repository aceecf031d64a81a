package model

import (
	"fmt"
	"time"
)

// Member is a person whose attendance is requested at meetings. Busy holds
// the intervals gathered from the member's calendar for the current run and
// is immutable for the duration of that run.
type Member struct {
	Name       string     `json:"name"`
	CalendarID string     `json:"calendar_id"`
	Busy       []Interval `json:"busy,omitempty"`
}

// FreeDuring reports whether the member has no busy interval overlapping iv.
func (m Member) FreeDuring(iv Interval) bool {
	for _, b := range m.Busy {
		if b.Overlaps(iv) {
			return false
		}
	}
	return true
}

// Window is one event from the potential-times calendar. Slots are derived
// from it; slots sharing a WindowID are siblings and must not be assigned
// to overlapping times.
type Window struct {
	ID       string `json:"id"`
	Interval `json:"interval"`
	Location string `json:"location,omitempty"`
}

// Slot is a discrete candidate time derived from exactly one window.
type Slot struct {
	ID       string `json:"id"`
	WindowID string `json:"window_id"`
	Interval `json:"interval"`
	Location string `json:"location,omitempty"`
}

// Meeting is a recurring meeting to place. Only active meetings enter the
// optimization; inactive ones are excluded from the model entirely.
type Meeting struct {
	Name         string   `json:"name"`
	Members      []string `json:"members"`
	KeyAttendees []string `json:"key_attendees,omitempty"`
	Key          bool     `json:"key,omitempty"`
	Active       bool     `json:"active"`
}

// Requires reports whether name is a required member of the meeting.
func (m Meeting) Requires(name string) bool {
	for _, n := range m.Members {
		if n == name {
			return true
		}
	}
	return false
}

// IsKeyAttendee reports whether name is a key attendee of the meeting.
func (m Meeting) IsKeyAttendee(name string) bool {
	for _, n := range m.KeyAttendees {
		if n == name {
			return true
		}
	}
	return false
}

// FixedConstraint mandates that Member attends Meeting. If no candidate slot
// leaves the member free, the hard model is infeasible.
type FixedConstraint struct {
	Meeting string `json:"meeting"`
	Member  string `json:"member"`
}

// PenaltyConfig holds the soft-clause weights. All weights must be
// non-negative; zero disables the tier.
type PenaltyConfig struct {
	KeyAttendeeAbsence    int `json:"key_attendee_absence"`
	KeyMeetingAbsence     int `json:"key_meeting_absence"`
	RequiredMemberAbsence int `json:"required_member_absence"`
}

// DefaultPenalties mirrors the weights the tool has always shipped with.
func DefaultPenalties() PenaltyConfig {
	return PenaltyConfig{KeyAttendeeAbsence: 100, KeyMeetingAbsence: 5, RequiredMemberAbsence: 1}
}

// Validate checks that no weight is negative.
func (p PenaltyConfig) Validate() error {
	if p.KeyAttendeeAbsence < 0 || p.KeyMeetingAbsence < 0 || p.RequiredMemberAbsence < 0 {
		return fmt.Errorf("penalty weights must be non-negative")
	}
	return nil
}

// Problem bundles everything one scheduling run consumes. It is built fresh
// from external inputs at the start of a run and discarded afterwards.
type Problem struct {
	WeekStart time.Time
	WeekEnd   time.Time
	Members   []Member
	Meetings  []Meeting
	Windows   []Window
	Fixed     []FixedConstraint
	Penalties PenaltyConfig
}

// ActiveMeetings returns the meetings eligible for scheduling, in input order.
func (p Problem) ActiveMeetings() []Meeting {
	var out []Meeting
	for _, m := range p.Meetings {
		if m.Active {
			out = append(out, m)
		}
	}
	return out
}

// Member looks a member up by name.
func (p Problem) Member(name string) (Member, bool) {
	for _, m := range p.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

// Meeting looks a meeting up by name.
func (p Problem) Meeting(name string) (Meeting, bool) {
	for _, m := range p.Meetings {
		if m.Name == name {
			return m, true
		}
	}
	return Meeting{}, false
}

// Validate checks referential integrity: unique member and meeting names,
// meeting rosters and fixed constraints referring to known entities, key
// attendees drawn from the meeting's own roster, and a valid week range.
func (p Problem) Validate() error {
	if !p.WeekEnd.After(p.WeekStart) {
		return fmt.Errorf("week end %s is not after week start %s", p.WeekEnd, p.WeekStart)
	}
	if err := p.Penalties.Validate(); err != nil {
		return err
	}
	members := make(map[string]bool, len(p.Members))
	for _, m := range p.Members {
		if members[m.Name] {
			return fmt.Errorf("duplicate member %q", m.Name)
		}
		members[m.Name] = true
	}
	meetings := make(map[string]bool, len(p.Meetings))
	for _, m := range p.Meetings {
		if meetings[m.Name] {
			return fmt.Errorf("duplicate meeting %q", m.Name)
		}
		meetings[m.Name] = true
		for _, n := range m.Members {
			if !members[n] {
				return fmt.Errorf("meeting %q requires unknown member %q", m.Name, n)
			}
		}
		for _, n := range m.KeyAttendees {
			if !m.Requires(n) {
				return fmt.Errorf("meeting %q lists key attendee %q outside its roster", m.Name, n)
			}
		}
	}
	for _, fc := range p.Fixed {
		if !meetings[fc.Meeting] {
			return fmt.Errorf("fixed constraint on unknown meeting %q", fc.Meeting)
		}
		if !members[fc.Member] {
			return fmt.Errorf("fixed constraint on unknown member %q", fc.Member)
		}
	}
	return nil
}
