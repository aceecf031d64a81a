package config

import "fmt"

// HistoryConfig defines settings for the run-history store.
type HistoryConfig struct {
	// Backend selects the store type: "jsonl" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *HistoryConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		c.Path = "calsat-history.jsonl"
	}
}

// Validate checks mandatory fields.
func (c HistoryConfig) Validate() error {
	if c.Backend != "jsonl" && c.Backend != "sqlite" {
		return fmt.Errorf("unknown history backend %s", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("history path is required")
	}
	return nil
}
