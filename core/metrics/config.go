package metrics

import "github.com/kbatisse/calsat/core/factory"

// Config defines settings for run sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusListen is the exposition address (e.g. ":2112"). When empty
	// no exposition server is started even if a prometheus sink is present.
	PrometheusListen string `json:"prometheus_listen"`
}
