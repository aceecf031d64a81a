package model

import "strings"

// Assignment is the decoded model output: exactly one slot per active
// meeting, plus the derived attendance boolean for every (meeting, member)
// pair and the total soft cost of the optimum.
type Assignment struct {
	Slots  map[string]Slot            // meeting name -> chosen slot
	Attend map[string]map[string]bool // meeting name -> member name -> attends
	Cost   int
}

// Absence is one missed (meeting, member) pair with the tiers that priced it.
// The tiers stack: a key attendee missing a key meeting carries both.
type Absence struct {
	Meeting     string `json:"meeting"`
	Member      string `json:"member"`
	KeyAttendee bool   `json:"key_attendee,omitempty"`
	KeyMeeting  bool   `json:"key_meeting,omitempty"`
	Penalty     int    `json:"penalty"`
}

// Tier renders the applicable penalty tiers as a stable label.
func (a Absence) Tier() string {
	var tiers []string
	if a.KeyAttendee {
		tiers = append(tiers, "key-attendee")
	}
	if a.KeyMeeting {
		tiers = append(tiers, "key-meeting")
	}
	if len(tiers) == 0 {
		return "ordinary"
	}
	return strings.Join(tiers, "+")
}
