// Package encode turns a scheduling problem into a weighted satisfiability
// instance: one assignment variable per (meeting, candidate slot) pair, one
// attendance variable per (meeting, required member) pair, hard clauses for
// structure and mandates, weighted soft clauses for absences.
package encode

import (
	"fmt"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/kbatisse/calsat/core/model"
	"github.com/kbatisse/calsat/core/solver"
)

// AssignVar names the boolean meaning "meeting is placed at slot".
func AssignVar(meeting, slotID string) string {
	return "assign/" + meeting + "/" + slotID
}

// AttendVar names the boolean meaning "member attends meeting".
func AttendVar(meeting, member string) string {
	return "attend/" + meeting + "/" + member
}

// Conflict is a hard constraint the builder can already prove unsatisfiable
// before handing the instance to the solver.
type Conflict struct {
	Meeting string
	Member  string // empty when the meeting has no candidate slots at all
	Detail  string
}

func (c Conflict) String() string {
	if c.Member == "" {
		return fmt.Sprintf("meeting %q: %s", c.Meeting, c.Detail)
	}
	return fmt.Sprintf("meeting %q, member %q: %s", c.Meeting, c.Member, c.Detail)
}

// PairWeight records the soft penalty attached to one (meeting, member)
// attendance variable, with the tiers that produced it. The key-attendee
// tier replaces the ordinary one; the key-meeting tier stacks on top.
type PairWeight struct {
	Meeting     string
	Member      string
	KeyAttendee bool
	KeyMeeting  bool
	Weight      int
}

// Stats summarizes the size of an encoded instance.
type Stats struct {
	Meetings    int
	Slots       int
	Variables   int
	HardClauses int
	SoftClauses int
}

// Model is the encoded instance plus the bookkeeping the decoder needs to
// map a variable assignment back to domain terms.
type Model struct {
	Instance solver.Instance

	Meetings   []model.Meeting             // active meetings, input order
	Slots      map[string]model.Slot       // slot id -> slot, in-week only
	SlotOrder  []string                    // slot ids in generation order
	Candidates map[string][]string         // meeting -> candidate slot ids
	Free       map[string]map[string]bool  // member -> slot id -> free
	Weights    []PairWeight
	Conflicts  []Conflict
}

// Empty reports whether there is nothing to optimize: no active meetings or
// no candidate slots inside the week.
func (m *Model) Empty() bool {
	return len(m.Meetings) == 0 || len(m.SlotOrder) == 0
}

// Stats computes instance size counters.
func (m *Model) Stats() Stats {
	vars := 0
	for _, c := range m.Candidates {
		vars += len(c)
	}
	for _, mt := range m.Meetings {
		vars += len(mt.Members)
	}
	return Stats{
		Meetings:    len(m.Meetings),
		Slots:       len(m.SlotOrder),
		Variables:   vars,
		HardClauses: len(m.Instance.Hard),
		SoftClauses: len(m.Instance.Soft),
	}
}

// Build encodes the problem over the given generated slots. Slots outside
// [WeekStart, WeekEnd) are discarded; fixed constraints are applied by
// restricting the candidate set of the mandated meeting. Build never fails:
// provably unsatisfiable hard constraints are collected in Conflicts and
// the caller decides how to surface them.
func Build(p model.Problem, generated []model.Slot) *Model {
	m := &Model{
		Meetings:   p.ActiveMeetings(),
		Slots:      make(map[string]model.Slot),
		Candidates: make(map[string][]string),
		Free:       make(map[string]map[string]bool),
	}

	week := model.Interval{Start: p.WeekStart, End: p.WeekEnd}
	for _, s := range generated {
		if !week.Contains(s.Interval) {
			continue
		}
		m.Slots[s.ID] = s
		m.SlotOrder = append(m.SlotOrder, s.ID)
	}
	if m.Empty() {
		return m
	}

	for _, mem := range p.Members {
		free := make(map[string]bool, len(m.SlotOrder))
		for _, id := range m.SlotOrder {
			free[id] = mem.FreeDuring(m.Slots[id].Interval)
		}
		m.Free[mem.Name] = free
	}

	fixed := make(map[string][]string)
	for _, fc := range p.Fixed {
		fixed[fc.Meeting] = append(fixed[fc.Meeting], fc.Member)
	}

	m.buildCandidates(fixed)
	m.exactlyOne()
	m.intraWindowExclusion()
	m.attendanceLinkage(p.Penalties)
	return m
}

// buildCandidates restricts each meeting's slots to those where every
// mandated member is free, recording a conflict when the set empties.
func (m *Model) buildCandidates(fixed map[string][]string) {
	for _, mt := range m.Meetings {
		var cands []string
		for _, id := range m.SlotOrder {
			ok := true
			for _, mem := range fixed[mt.Name] {
				if !m.Free[mem][id] {
					ok = false
					break
				}
			}
			if ok {
				cands = append(cands, id)
			}
		}
		m.Candidates[mt.Name] = cands
		if len(cands) > 0 {
			continue
		}
		if len(fixed[mt.Name]) == 0 {
			m.Conflicts = append(m.Conflicts, Conflict{
				Meeting: mt.Name,
				Detail:  "no candidate slots within the week",
			})
			continue
		}
		for _, mem := range fixed[mt.Name] {
			none := true
			for _, id := range m.SlotOrder {
				if m.Free[mem][id] {
					none = false
					break
				}
			}
			if none {
				m.Conflicts = append(m.Conflicts, Conflict{
					Meeting: mt.Name,
					Member:  mem,
					Detail:  "mandatory attendee has no free candidate slot",
				})
			}
		}
		if len(m.Conflicts) == 0 || m.Conflicts[len(m.Conflicts)-1].Meeting != mt.Name {
			m.Conflicts = append(m.Conflicts, Conflict{
				Meeting: mt.Name,
				Detail:  "mandatory attendees share no common free slot",
			})
		}
	}
}

// exactlyOne emits, per meeting, one at-least-one clause over its candidates
// and pairwise at-most-one clauses.
func (m *Model) exactlyOne() {
	for _, mt := range m.Meetings {
		cands := m.Candidates[mt.Name]
		if len(cands) == 0 {
			continue // already a recorded conflict
		}
		clause := make(solver.Clause, len(cands))
		for i, id := range cands {
			clause[i] = solver.Pos(AssignVar(mt.Name, id))
		}
		m.hard(clause)
		if len(cands) < 2 {
			continue
		}
		for _, pair := range combin.Combinations(len(cands), 2) {
			m.hard(solver.Clause{
				solver.Neg(AssignVar(mt.Name, cands[pair[0]])),
				solver.Neg(AssignVar(mt.Name, cands[pair[1]])),
			})
		}
	}
}

// intraWindowExclusion forbids two distinct meetings from occupying the same
// slot or overlapping sibling slots. Slots from different windows are never
// constrained against each other: separate windows are independently
// authorized time pools, and coincident times across them are legitimate.
func (m *Model) intraWindowExclusion() {
	if len(m.Meetings) < 2 {
		return
	}
	candSet := make(map[string]map[string]bool, len(m.Meetings))
	for _, mt := range m.Meetings {
		set := make(map[string]bool, len(m.Candidates[mt.Name]))
		for _, id := range m.Candidates[mt.Name] {
			set[id] = true
		}
		candSet[mt.Name] = set
	}

	byWindow := make(map[string][]string)
	var windowOrder []string
	for _, id := range m.SlotOrder {
		w := m.Slots[id].WindowID
		if _, seen := byWindow[w]; !seen {
			windowOrder = append(windowOrder, w)
		}
		byWindow[w] = append(byWindow[w], id)
	}

	meetingPairs := combin.Combinations(len(m.Meetings), 2)
	forbid := func(m1, s1, m2, s2 string) {
		if candSet[m1][s1] && candSet[m2][s2] {
			m.hard(solver.Clause{
				solver.Neg(AssignVar(m1, s1)),
				solver.Neg(AssignVar(m2, s2)),
			})
		}
	}

	for _, w := range windowOrder {
		ids := byWindow[w]
		for _, mp := range meetingPairs {
			m1, m2 := m.Meetings[mp[0]].Name, m.Meetings[mp[1]].Name
			for _, id := range ids {
				forbid(m1, id, m2, id)
			}
			if len(ids) < 2 {
				continue
			}
			for _, sp := range combin.Combinations(len(ids), 2) {
				s1, s2 := ids[sp[0]], ids[sp[1]]
				if !m.Slots[s1].Overlaps(m.Slots[s2].Interval) {
					continue
				}
				forbid(m1, s1, m2, s2)
				forbid(m1, s2, m2, s1)
			}
		}
	}
}

// attendanceLinkage ties each attend variable to the disjunction of the
// meeting's assignments over slots where the member is free, and prices its
// violation with the applicable penalty tiers.
func (m *Model) attendanceLinkage(pens model.PenaltyConfig) {
	for _, mt := range m.Meetings {
		for _, mem := range mt.Members {
			att := AttendVar(mt.Name, mem)
			var freeCands []string
			for _, id := range m.Candidates[mt.Name] {
				if m.Free[mem][id] {
					freeCands = append(freeCands, id)
				}
			}

			// attend -> some free assignment (unit ¬attend when none exists).
			clause := make(solver.Clause, 0, len(freeCands)+1)
			clause = append(clause, solver.Neg(att))
			for _, id := range freeCands {
				clause = append(clause, solver.Pos(AssignVar(mt.Name, id)))
			}
			m.hard(clause)
			// free assignment -> attend.
			for _, id := range freeCands {
				m.hard(solver.Clause{solver.Neg(AssignVar(mt.Name, id)), solver.Pos(att)})
			}

			pw := PairWeight{
				Meeting:     mt.Name,
				Member:      mem,
				KeyAttendee: mt.IsKeyAttendee(mem),
				KeyMeeting:  mt.Key,
			}
			if pw.KeyAttendee {
				pw.Weight += pens.KeyAttendeeAbsence
			} else if !pw.KeyMeeting {
				pw.Weight += pens.RequiredMemberAbsence
			}
			if pw.KeyMeeting {
				pw.Weight += pens.KeyMeetingAbsence
			}
			m.Weights = append(m.Weights, pw)
			if pw.Weight > 0 {
				m.Instance.Soft = append(m.Instance.Soft, solver.SoftClause{
					Clause: solver.Clause{solver.Pos(att)},
					Weight: pw.Weight,
				})
			}
		}
	}
}

func (m *Model) hard(c solver.Clause) {
	m.Instance.Hard = append(m.Instance.Hard, c)
}
