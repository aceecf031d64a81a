package ical

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/kbatisse/calsat/core/schedule"
)

// WriteSchedule encodes the scheduled meetings as an iCalendar stream.
// Absences and double bookings are carried in the event descriptions.
func WriteSchedule(w io.Writer, rep *schedule.Report) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//calsat//schedule//EN")

	now := time.Now().UTC()
	meetings := make([]schedule.MeetingSchedule, len(rep.Meetings))
	copy(meetings, rep.Meetings)
	sort.Slice(meetings, func(i, j int) bool {
		if meetings[i].Slot.Start.Equal(meetings[j].Slot.Start) {
			return meetings[i].Meeting < meetings[j].Meeting
		}
		return meetings[i].Slot.Start.Before(meetings[j].Slot.Start)
	})

	for _, ms := range meetings {
		ev := ical.NewEvent()
		ev.Props.SetText(ical.PropUID, uuid.NewString())
		ev.Props.SetDateTime(ical.PropDateTimeStamp, now)
		ev.Props.SetText(ical.PropSummary, ms.Meeting)
		ev.Props.SetDateTime(ical.PropDateTimeStart, ms.Slot.Start)
		ev.Props.SetDateTime(ical.PropDateTimeEnd, ms.Slot.End)
		if ms.Slot.Location != "" {
			ev.Props.SetText(ical.PropLocation, ms.Slot.Location)
		}
		if desc := describe(rep, ms); desc != "" {
			ev.Props.SetText(ical.PropDescription, desc)
		}
		cal.Children = append(cal.Children, ev.Component)
	}

	return ical.NewEncoder(w).Encode(cal)
}

func describe(rep *schedule.Report, ms schedule.MeetingSchedule) string {
	var parts []string
	if len(ms.Missing) > 0 {
		names := make([]string, len(ms.Missing))
		for i, a := range ms.Missing {
			names[i] = a.Member
		}
		parts = append(parts, "Missing: "+strings.Join(names, ", "))
	}
	for _, db := range rep.DoubleBookings {
		if db.Meetings[0] == ms.Meeting || db.Meetings[1] == ms.Meeting {
			other := db.Meetings[0]
			if other == ms.Meeting {
				other = db.Meetings[1]
			}
			parts = append(parts, fmt.Sprintf("Double-booked: %s with %s", db.Member, other))
		}
	}
	return strings.Join(parts, "\n")
}
