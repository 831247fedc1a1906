package config

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"time"
	"unicode"

	"github.com/c360/signalbus/errors"
)

// Rule kinds accepted in monitor configuration.
const (
	KindAbove             = "above"
	KindBelow             = "below"
	KindWithin            = "within"
	KindOutside           = "outside"
	KindWithinHysteresis  = "within_hysteresis"
	KindOutsideHysteresis = "outside_hysteresis"
)

// Config is the complete daemon configuration.
type Config struct {
	Version  string          `json:"version"`
	Ingest   IngestConfig    `json:"ingest"`
	Metrics  MetricsConfig   `json:"metrics,omitempty"`
	NATS     NATSConfig      `json:"nats,omitempty"`
	Monitors []MonitorConfig `json:"monitors"`
}

// IngestConfig defines the UDP sample ingest listener.
type IngestConfig struct {
	UDPListen     string `json:"udp_listen"`               // e.g. ":9101"
	InboxCapacity int    `json:"inbox_capacity,omitempty"` // bridge inbox depth, default 256
}

// MetricsConfig defines the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr,omitempty"` // default ":9090"
	Path    string `json:"path,omitempty"` // default "/metrics"
}

// NATSConfig defines the optional NATS bridge connection.
type NATSConfig struct {
	Enabled       bool          `json:"enabled"`
	URLs          []string      `json:"urls,omitempty"`
	MaxReconnects int           `json:"max_reconnects,omitempty"`
	ReconnectWait time.Duration `json:"reconnect_wait,omitempty"`
	Username      string        `json:"username,omitempty"`
	Password      string        `json:"password,omitempty"`
	Token         string        `json:"token,omitempty"`
	SubjectPrefix string        `json:"subject_prefix,omitempty"` // default "signalbus"
}

// MonitorConfig defines one parameter monitor and its limit rules.
type MonitorConfig struct {
	Name     string       `json:"name"`
	WindowS  float64      `json:"window_s,omitempty"`  // stats window in seconds, default 60
	MaxRules int          `json:"max_rules,omitempty"` // envelope capacity, default 4
	Rules    []RuleConfig `json:"rules,omitempty"`
}

// RuleConfig defines one limit rule. Which threshold fields matter depends
// on Kind; delays are in seconds.
type RuleConfig struct {
	Kind      string  `json:"kind"`
	Lo        float64 `json:"lo,omitempty"`
	Hi        float64 `json:"hi,omitempty"`
	LoEnter   float64 `json:"lo_enter,omitempty"`
	LoExit    float64 `json:"lo_exit,omitempty"`
	HiExit    float64 `json:"hi_exit,omitempty"`
	HiEnter   float64 `json:"hi_enter,omitempty"`
	EnterS    float64 `json:"enter_delay_s,omitempty"`
	ExitS     float64 `json:"exit_delay_s,omitempty"`
	Inclusive bool    `json:"inclusive,omitempty"`
}

// Load reads, parses, validates, and defaults a JSON config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFatal(err, "Config", "Load", "read "+path)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.WrapInvalid(err, "Config", "Load", "parse "+path)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.WrapInvalid(err, "Config", "Load", "validate "+path)
	}
	return &cfg, nil
}

// ApplyDefaults fills unset fields with working defaults.
func (c *Config) ApplyDefaults() {
	if c.Ingest.UDPListen == "" {
		c.Ingest.UDPListen = ":9101"
	}
	if c.Ingest.InboxCapacity <= 0 {
		c.Ingest.InboxCapacity = 256
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9090"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if len(c.NATS.URLs) == 0 {
		c.NATS.URLs = []string{"nats://localhost:4222"}
	}
	if c.NATS.ReconnectWait == 0 {
		c.NATS.ReconnectWait = 2 * time.Second
	}
	if c.NATS.SubjectPrefix == "" {
		c.NATS.SubjectPrefix = "signalbus"
	}
	for i := range c.Monitors {
		if c.Monitors[i].WindowS == 0 {
			c.Monitors[i].WindowS = 60
		}
		if c.Monitors[i].MaxRules == 0 {
			c.Monitors[i].MaxRules = 4
		}
	}
}

// Validate checks the config for structural errors.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Monitors))
	for i, m := range c.Monitors {
		if m.Name == "" {
			return fmt.Errorf("monitors[%d]: name is required", i)
		}
		if !isValidSubjectPart(m.Name) {
			return fmt.Errorf("monitors[%d]: name %q is not valid for topic and NATS subject names", i, m.Name)
		}
		if seen[m.Name] {
			return fmt.Errorf("monitors[%d]: duplicate name %q", i, m.Name)
		}
		seen[m.Name] = true

		if m.WindowS < 0 {
			return fmt.Errorf("monitor %s: window_s must be non-negative", m.Name)
		}
		if len(m.Rules) > m.MaxRules {
			return fmt.Errorf("monitor %s: %d rules exceed max_rules %d", m.Name, len(m.Rules), m.MaxRules)
		}
		for j, r := range m.Rules {
			if err := r.validate(); err != nil {
				return fmt.Errorf("monitor %s rules[%d]: %w", m.Name, j, err)
			}
		}
	}

	if c.NATS.Enabled && len(c.NATS.URLs) == 0 {
		return stderrors.New("nats.urls is required when the bridge is enabled")
	}
	return nil
}

func (r *RuleConfig) validate() error {
	switch r.Kind {
	case KindAbove, KindBelow:
	case KindWithin, KindOutside:
		if r.Lo > r.Hi {
			return fmt.Errorf("lo %v must not exceed hi %v", r.Lo, r.Hi)
		}
	case KindWithinHysteresis:
		if !(r.LoEnter <= r.LoExit && r.LoExit <= r.HiExit && r.HiExit <= r.HiEnter) {
			return stderrors.New("hysteresis thresholds must satisfy lo_enter <= lo_exit <= hi_exit <= hi_enter")
		}
	case KindOutsideHysteresis:
		if !(r.LoExit <= r.LoEnter && r.LoEnter <= r.HiEnter && r.HiEnter <= r.HiExit) {
			return stderrors.New("hysteresis thresholds must satisfy lo_exit <= lo_enter <= hi_enter <= hi_exit")
		}
	default:
		return fmt.Errorf("unknown rule kind %q", r.Kind)
	}

	if r.EnterS < 0 || r.ExitS < 0 {
		return stderrors.New("delays must be non-negative")
	}
	return nil
}

// isValidSubjectPart checks if a string is usable in topic names and NATS
// subjects: alphanumeric plus dash and underscore. Dots are reserved for the
// value/stats/violation suffixes.
func isValidSubjectPart(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			return false
		}
	}
	return true
}
