package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `timezone: "America/New_York"
scheduler:
  slot_step_minutes: 60
  penalties:
    key_attendee_absence: 50
    required_member_absence: 0
members:
  - name: "alice"
    calendar: "testdata/alice.ics"
  - name: "bob"
    calendar: "https://example.org/bob.ics"
meetings:
  - name: "standup"
    members: ["alice", "bob"]
    key_attendees: ["alice"]
  - name: "retro"
    members: ["bob"]
active_meetings: ["standup"]
key_meetings: ["standup"]
fixed_constraints:
  - meeting: "standup"
    members: ["bob"]
windows:
  calendar: "testdata/windows.ics"
history:
  backend: "sqlite"
  path: "runs.db"
metrics:
  sinks:
    - type: "nop"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"timezone", cfg.Timezone, "America/New_York"},
		{"slot_step", cfg.Scheduler.SlotStepMinutes, 60},
		{"duration_default", cfg.Scheduler.MeetingDurationMinutes, 60},
		{"members", len(cfg.Members), 2},
		{"windows", cfg.Windows.Calendar, "testdata/windows.ics"},
		{"history_backend", cfg.History.Backend, "sqlite"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %v want %v", c.name, c.got, c.want)
		}
	}

	pens := cfg.Penalties()
	if pens.KeyAttendeeAbsence != 50 {
		t.Errorf("key attendee penalty: got %d want 50", pens.KeyAttendeeAbsence)
	}
	if pens.RequiredMemberAbsence != 0 {
		t.Errorf("explicit zero penalty lost: got %d", pens.RequiredMemberAbsence)
	}
	if pens.KeyMeetingAbsence != 5 {
		t.Errorf("default key meeting penalty: got %d want 5", pens.KeyMeetingAbsence)
	}

	meetings := cfg.ModelMeetings()
	if !meetings[0].Active || meetings[1].Active {
		t.Errorf("active filter: got %v/%v", meetings[0].Active, meetings[1].Active)
	}
	if !meetings[0].Key || meetings[1].Key {
		t.Errorf("key flag: got %v/%v", meetings[0].Key, meetings[1].Key)
	}

	fixed := cfg.ModelFixed()
	if len(fixed) != 1 || fixed[0].Meeting != "standup" || fixed[0].Member != "bob" {
		t.Errorf("fixed constraints: got %+v", fixed)
	}
}

func TestLoadRejectsUnknownReferences(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `members:
  - name: "alice"
    calendar: "a.ics"
meetings:
  - name: "standup"
    members: ["ghost"]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown member reference")
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	if _, err := Load("config.toml"); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}
