package schedule

import (
	"fmt"

	"github.com/kbatisse/calsat/core/encode"
	"github.com/kbatisse/calsat/core/model"
	"github.com/kbatisse/calsat/core/solver"
)

type pairKey struct {
	meeting string
	member  string
}

type weightInfo struct {
	keyAttendee bool
	keyMeeting  bool
	weight      int
}

// decode reads the solver model back into a concrete assignment, then
// re-verifies the hard invariants independently of the encoding. A failed
// check is an InvariantError: it means the instance was encoded wrong, not
// that the problem was unschedulable.
func decode(p model.Problem, em *encode.Model, res solver.Result) (*model.Assignment, map[pairKey]weightInfo, error) {
	asn := &model.Assignment{
		Slots:  make(map[string]model.Slot, len(em.Meetings)),
		Attend: make(map[string]map[string]bool, len(em.Meetings)),
		Cost:   res.Cost,
	}

	for _, mt := range em.Meetings {
		var chosen []model.Slot
		for _, id := range em.Candidates[mt.Name] {
			if res.Model[encode.AssignVar(mt.Name, id)] {
				chosen = append(chosen, em.Slots[id])
			}
		}
		if len(chosen) != 1 {
			return nil, nil, &InvariantError{
				Detail: fmt.Sprintf("meeting %q assigned %d slots, want exactly 1", mt.Name, len(chosen)),
			}
		}
		asn.Slots[mt.Name] = chosen[0]

		attend := make(map[string]bool, len(mt.Members))
		for _, mem := range mt.Members {
			attend[mem] = res.Model[encode.AttendVar(mt.Name, mem)]
		}
		asn.Attend[mt.Name] = attend
	}

	if err := verify(p, em, asn); err != nil {
		return nil, nil, err
	}

	weights := make(map[pairKey]weightInfo, len(em.Weights))
	expected := 0
	for _, w := range em.Weights {
		weights[pairKey{w.Meeting, w.Member}] = weightInfo{
			keyAttendee: w.KeyAttendee,
			keyMeeting:  w.KeyMeeting,
			weight:      w.Weight,
		}
		if !asn.Attend[w.Meeting][w.Member] {
			expected += w.Weight
		}
	}
	if expected != res.Cost {
		return nil, nil, &InvariantError{
			Detail: fmt.Sprintf("solver cost %d does not match recomputed penalty %d", res.Cost, expected),
		}
	}
	return asn, weights, nil
}

// verify re-checks the decoded assignment against the domain model:
// intra-window non-overlap, mandatory attendance, and attendance booleans
// consistent with the members' busy intervals.
func verify(p model.Problem, em *encode.Model, asn *model.Assignment) error {
	for i := 0; i < len(em.Meetings); i++ {
		for j := i + 1; j < len(em.Meetings); j++ {
			s1 := asn.Slots[em.Meetings[i].Name]
			s2 := asn.Slots[em.Meetings[j].Name]
			if s1.WindowID == s2.WindowID && s1.Overlaps(s2.Interval) {
				return &InvariantError{
					Detail: fmt.Sprintf("meetings %q and %q overlap within window %s",
						em.Meetings[i].Name, em.Meetings[j].Name, s1.WindowID),
				}
			}
		}
	}

	for _, fc := range p.Fixed {
		slot, ok := asn.Slots[fc.Meeting]
		if !ok {
			continue // inactive meeting
		}
		mem, found := p.Member(fc.Member)
		if !found {
			continue
		}
		if !mem.FreeDuring(slot.Interval) {
			return &InvariantError{
				Detail: fmt.Sprintf("mandatory attendee %q is busy during meeting %q at %s",
					fc.Member, fc.Meeting, slot.Interval),
			}
		}
	}

	for _, mt := range em.Meetings {
		slot := asn.Slots[mt.Name]
		for _, name := range mt.Members {
			mem, found := p.Member(name)
			if !found {
				continue
			}
			if asn.Attend[mt.Name][name] != mem.FreeDuring(slot.Interval) {
				return &InvariantError{
					Detail: fmt.Sprintf("attendance of %q at %q disagrees with their busy intervals", name, mt.Name),
				}
			}
		}
	}
	return nil
}
