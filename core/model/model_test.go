package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var base = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func iv(h1, h2 int) Interval {
	return Interval{Start: base.Add(time.Duration(h1) * time.Hour), End: base.Add(time.Duration(h2) * time.Hour)}
}

func TestIntervalOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"disjoint", iv(9, 10), iv(11, 12), false},
		{"touching half-open", iv(9, 10), iv(10, 11), false},
		{"partial", iv(9, 11), iv(10, 12), true},
		{"contained", iv(9, 12), iv(10, 11), true},
		{"identical", iv(9, 10), iv(9, 10), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Overlaps(tc.b))
			assert.Equal(t, tc.want, tc.b.Overlaps(tc.a))
		})
	}
}

func TestIntervalContains(t *testing.T) {
	assert.True(t, iv(9, 12).Contains(iv(10, 11)))
	assert.True(t, iv(9, 12).Contains(iv(9, 12)))
	assert.False(t, iv(9, 12).Contains(iv(11, 13)))
}

func TestMemberFreeDuring(t *testing.T) {
	m := Member{Name: "A", Busy: []Interval{iv(9, 10), iv(13, 14)}}
	assert.False(t, m.FreeDuring(iv(9, 10)))
	assert.True(t, m.FreeDuring(iv(10, 11)))
	assert.True(t, m.FreeDuring(iv(12, 13)))
	assert.False(t, m.FreeDuring(iv(13, 15)))
}

func TestPenaltyConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultPenalties().Validate())
	assert.Error(t, PenaltyConfig{KeyAttendeeAbsence: -1}.Validate())
}

func TestAbsenceTier(t *testing.T) {
	assert.Equal(t, "ordinary", Absence{}.Tier())
	assert.Equal(t, "key-attendee", Absence{KeyAttendee: true}.Tier())
	assert.Equal(t, "key-meeting", Absence{KeyMeeting: true}.Tier())
	assert.Equal(t, "key-attendee+key-meeting", Absence{KeyAttendee: true, KeyMeeting: true}.Tier())
}

func TestProblemValidate(t *testing.T) {
	valid := Problem{
		WeekStart: base,
		WeekEnd:   base.Add(24 * time.Hour),
		Members:   []Member{{Name: "A"}, {Name: "B"}},
		Meetings: []Meeting{
			{Name: "sync", Members: []string{"A", "B"}, KeyAttendees: []string{"B"}, Active: true},
		},
		Fixed:     []FixedConstraint{{Meeting: "sync", Member: "A"}},
		Penalties: DefaultPenalties(),
	}
	assert.NoError(t, valid.Validate())

	p := valid
	p.WeekEnd = p.WeekStart
	assert.Error(t, p.Validate())

	p = valid
	p.Members = []Member{{Name: "A"}, {Name: "A"}}
	assert.Error(t, p.Validate())

	p = valid
	p.Meetings = []Meeting{{Name: "sync", Members: []string{"ghost"}, Active: true}}
	assert.Error(t, p.Validate())

	p = valid
	p.Meetings = []Meeting{{Name: "sync", Members: []string{"A"}, KeyAttendees: []string{"B"}, Active: true}}
	assert.Error(t, p.Validate(), "key attendee outside roster")

	p = valid
	p.Fixed = []FixedConstraint{{Meeting: "ghost", Member: "A"}}
	assert.Error(t, p.Validate())
}

func TestActiveMeetings(t *testing.T) {
	p := Problem{Meetings: []Meeting{
		{Name: "a", Active: true},
		{Name: "b"},
		{Name: "c", Active: true},
	}}
	active := p.ActiveMeetings()
	assert.Len(t, active, 2)
	assert.Equal(t, "a", active[0].Name)
	assert.Equal(t, "c", active[1].Name)
}
