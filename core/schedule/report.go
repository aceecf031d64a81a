package schedule

import (
	"time"

	"github.com/kbatisse/calsat/core/model"
)

// MeetingSchedule is one meeting's placement with its attendance split.
type MeetingSchedule struct {
	Meeting   string          `json:"meeting"`
	Slot      model.Slot      `json:"slot"`
	Attending []string        `json:"attending,omitempty"`
	Missing   []model.Absence `json:"missing,omitempty"`
}

// DoubleBooking is one member attending two meetings whose chosen slots
// overlap in time. This can only happen across windows and is legal; it is
// reported so organizers can see the residual clash.
type DoubleBooking struct {
	Member   string        `json:"member"`
	Meetings [2]string     `json:"meetings"`
	Slots    [2]model.Slot `json:"slots"`
}

// Report is the full outcome of one feasible scheduling run.
type Report struct {
	WeekStart      time.Time         `json:"week_start"`
	WeekEnd        time.Time         `json:"week_end"`
	Meetings       []MeetingSchedule `json:"meetings"`
	Absences       []model.Absence   `json:"absences,omitempty"`
	DoubleBookings []DoubleBooking   `json:"double_bookings,omitempty"`
	TotalPenalty   int               `json:"total_penalty"`
	Required       int               `json:"required"`
	Attended       int               `json:"attended"`
}

// AttendanceRate returns attended over required assignments, in [0, 1].
// It returns 1 when there is nothing to attend.
func (r *Report) AttendanceRate() float64 {
	if r.Required == 0 {
		return 1
	}
	return float64(r.Attended) / float64(r.Required)
}

// AbsencesByTier counts absences per penalty tier label.
func (r *Report) AbsencesByTier() map[string]int {
	out := make(map[string]int)
	for _, a := range r.Absences {
		out[a.Tier()]++
	}
	return out
}

func buildReport(asn *model.Assignment, p model.Problem, weights map[pairKey]weightInfo) *Report {
	rep := &Report{WeekStart: p.WeekStart, WeekEnd: p.WeekEnd, TotalPenalty: asn.Cost}
	for _, mt := range p.ActiveMeetings() {
		ms := MeetingSchedule{Meeting: mt.Name, Slot: asn.Slots[mt.Name]}
		for _, mem := range mt.Members {
			rep.Required++
			if asn.Attend[mt.Name][mem] {
				rep.Attended++
				ms.Attending = append(ms.Attending, mem)
				continue
			}
			w := weights[pairKey{mt.Name, mem}]
			abs := model.Absence{
				Meeting:     mt.Name,
				Member:      mem,
				KeyAttendee: w.keyAttendee,
				KeyMeeting:  w.keyMeeting,
				Penalty:     w.weight,
			}
			ms.Missing = append(ms.Missing, abs)
			rep.Absences = append(rep.Absences, abs)
		}
		rep.Meetings = append(rep.Meetings, ms)
	}
	rep.DoubleBookings = findDoubleBookings(rep.Meetings)
	return rep
}

// findDoubleBookings scans attending members of every meeting pair with
// overlapping chosen slots.
func findDoubleBookings(meetings []MeetingSchedule) []DoubleBooking {
	var out []DoubleBooking
	for i := 0; i < len(meetings); i++ {
		for j := i + 1; j < len(meetings); j++ {
			a, b := meetings[i], meetings[j]
			if !a.Slot.Overlaps(b.Slot.Interval) {
				continue
			}
			for _, mem := range a.Attending {
				for _, other := range b.Attending {
					if mem == other {
						out = append(out, DoubleBooking{
							Member:   mem,
							Meetings: [2]string{a.Meeting, b.Meeting},
							Slots:    [2]model.Slot{a.Slot, b.Slot},
						})
					}
				}
			}
		}
	}
	return out
}
