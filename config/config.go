// Package config loads the scheduler configuration from YAML or JSON with
// environment-variable overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kbatisse/calsat/core/metrics"
	"github.com/kbatisse/calsat/core/model"
)

// Config is the root configuration document.
type Config struct {
	Timezone       string          `json:"timezone"`
	Scheduler      SchedulerConfig `json:"scheduler"`
	Members        []MemberConfig  `json:"members"`
	Meetings       []MeetingConfig `json:"meetings"`
	ActiveMeetings []string        `json:"active_meetings"`
	KeyMeetings    []string        `json:"key_meetings"`
	Fixed          []FixedConfig   `json:"fixed_constraints"`
	Windows        WindowsConfig   `json:"windows"`
	History        HistoryConfig   `json:"history"`
	Metrics        metrics.Config  `json:"metrics"`
}

// SchedulerConfig holds slot generation and penalty settings.
type SchedulerConfig struct {
	SlotStepMinutes        int             `json:"slot_step_minutes"`
	MeetingDurationMinutes int             `json:"meeting_duration_minutes"`
	Penalties              PenaltiesConfig `json:"penalties"`
}

// PenaltiesConfig uses pointers so an explicit zero survives loading.
type PenaltiesConfig struct {
	KeyAttendeeAbsence    *int `json:"key_attendee_absence"`
	KeyMeetingAbsence     *int `json:"key_meeting_absence"`
	RequiredMemberAbsence *int `json:"required_member_absence"`
}

// MemberConfig declares a member and the calendar their busy intervals are
// read from (an .ics file path or URL).
type MemberConfig struct {
	Name     string `json:"name"`
	Calendar string `json:"calendar"`
}

// MeetingConfig declares a meeting and its roster.
type MeetingConfig struct {
	Name         string   `json:"name"`
	Members      []string `json:"members"`
	KeyAttendees []string `json:"key_attendees"`
}

// FixedConfig mandates members' attendance at a meeting.
type FixedConfig struct {
	Meeting string   `json:"meeting"`
	Members []string `json:"members"`
}

// WindowsConfig points at the potential-times calendar.
type WindowsConfig struct {
	Calendar string `json:"calendar"`
}

// Load reads, overlays and validates the configuration at path.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("CALSAT_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "calsat_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.Scheduler.SlotStepMinutes == 0 {
		c.Scheduler.SlotStepMinutes = 30
	}
	if c.Scheduler.MeetingDurationMinutes == 0 {
		c.Scheduler.MeetingDurationMinutes = 60
	}
	c.History.SetDefaults()
}

// Validate checks mandatory fields and cross-references.
func (c Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	if c.Scheduler.SlotStepMinutes <= 0 {
		return fmt.Errorf("slot_step_minutes must be positive")
	}
	if c.Scheduler.MeetingDurationMinutes <= 0 {
		return fmt.Errorf("meeting_duration_minutes must be positive")
	}
	if err := c.Penalties().Validate(); err != nil {
		return err
	}
	members := make(map[string]bool, len(c.Members))
	for _, m := range c.Members {
		if m.Name == "" {
			return fmt.Errorf("member with empty name")
		}
		if m.Calendar == "" {
			return fmt.Errorf("member %q has no calendar", m.Name)
		}
		if members[m.Name] {
			return fmt.Errorf("duplicate member %q", m.Name)
		}
		members[m.Name] = true
	}
	meetings := make(map[string]bool, len(c.Meetings))
	for _, m := range c.Meetings {
		if m.Name == "" {
			return fmt.Errorf("meeting with empty name")
		}
		if meetings[m.Name] {
			return fmt.Errorf("duplicate meeting %q", m.Name)
		}
		meetings[m.Name] = true
		for _, n := range m.Members {
			if !members[n] {
				return fmt.Errorf("meeting %q references unknown member %q", m.Name, n)
			}
		}
	}
	for _, name := range c.ActiveMeetings {
		if !meetings[name] {
			return fmt.Errorf("active_meetings references unknown meeting %q", name)
		}
	}
	for _, name := range c.KeyMeetings {
		if !meetings[name] {
			return fmt.Errorf("key_meetings references unknown meeting %q", name)
		}
	}
	for _, fc := range c.Fixed {
		if !meetings[fc.Meeting] {
			return fmt.Errorf("fixed constraint references unknown meeting %q", fc.Meeting)
		}
		for _, n := range fc.Members {
			if !members[n] {
				return fmt.Errorf("fixed constraint references unknown member %q", n)
			}
		}
	}
	return c.History.Validate()
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Penalties resolves the configured weights, falling back to defaults for
// unset tiers.
func (c Config) Penalties() model.PenaltyConfig {
	p := model.DefaultPenalties()
	if v := c.Scheduler.Penalties.KeyAttendeeAbsence; v != nil {
		p.KeyAttendeeAbsence = *v
	}
	if v := c.Scheduler.Penalties.KeyMeetingAbsence; v != nil {
		p.KeyMeetingAbsence = *v
	}
	if v := c.Scheduler.Penalties.RequiredMemberAbsence; v != nil {
		p.RequiredMemberAbsence = *v
	}
	return p
}

// SlotStep returns the configured stepping interval.
func (c Config) SlotStep() time.Duration {
	return time.Duration(c.Scheduler.SlotStepMinutes) * time.Minute
}

// MeetingDuration returns the configured meeting duration.
func (c Config) MeetingDuration() time.Duration {
	return time.Duration(c.Scheduler.MeetingDurationMinutes) * time.Minute
}

// ModelMeetings converts the declared meetings into domain meetings,
// applying the active_meetings and key_meetings lists. An empty
// active_meetings list leaves every meeting active.
func (c Config) ModelMeetings() []model.Meeting {
	active := make(map[string]bool, len(c.ActiveMeetings))
	for _, n := range c.ActiveMeetings {
		active[n] = true
	}
	key := make(map[string]bool, len(c.KeyMeetings))
	for _, n := range c.KeyMeetings {
		key[n] = true
	}
	out := make([]model.Meeting, len(c.Meetings))
	for i, m := range c.Meetings {
		out[i] = model.Meeting{
			Name:         m.Name,
			Members:      m.Members,
			KeyAttendees: m.KeyAttendees,
			Key:          key[m.Name],
			Active:       len(c.ActiveMeetings) == 0 || active[m.Name],
		}
	}
	return out
}

// ModelFixed flattens the fixed-constraint groups into (meeting, member)
// pairs.
func (c Config) ModelFixed() []model.FixedConstraint {
	var out []model.FixedConstraint
	for _, fc := range c.Fixed {
		for _, m := range fc.Members {
			out = append(out, model.FixedConstraint{Meeting: fc.Meeting, Member: m})
		}
	}
	return out
}
