package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}

// ApplyDefaults fills every unset option with its documented default.
func ApplyDefaults(cfg *AppConfig) {
	if cfg.TerminalID == "" {
		cfg.TerminalID = "terminal-local"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.GRPCPort == 0 {
		cfg.Server.GRPCPort = 9090
	}

	m := &cfg.Monitor
	if m.PollingInterval == 0 {
		m.PollingInterval = 30 * time.Second
	}
	if m.SecurityRebootGrace == 0 {
		m.SecurityRebootGrace = 120 * time.Second
	}
	if len(m.FastBackoff) == 0 {
		m.FastBackoff = []time.Duration{
			30 * time.Second, 60 * time.Second, 120 * time.Second, 300 * time.Second,
		}
	}
	if len(m.SlowBackoff) == 0 {
		m.SlowBackoff = []time.Duration{
			60 * time.Second, 120 * time.Second, 300 * time.Second, 600 * time.Second,
		}
	}
	if m.IntentHardTimeout == 0 {
		m.IntentHardTimeout = 3600 * time.Second
	}
	if m.IntentProactiveAge == 0 {
		m.IntentProactiveAge = 3000 * time.Second
	}
	if m.StuckAwaitingInput == 0 {
		m.StuckAwaitingInput = 300 * time.Second
	}
	if m.AttemptTimeout == 0 {
		m.AttemptTimeout = 20 * time.Second
	}
	if m.BlipSettleDelay == 0 {
		m.BlipSettleDelay = 500 * time.Millisecond
	}
	if m.MilestoneEvery == 0 {
		m.MilestoneEvery = 10
	}
	if m.JournalDepth == 0 {
		m.JournalDepth = 1000
	}
	if m.DeviceFilter == "" {
		m.DeviceFilter = "bluetooth"
	}

	if cfg.Intents.Category == "" {
		cfg.Intents.Category = "default"
	}
	if cfg.Intents.Layout == "" {
		cfg.Intents.Layout = "manual"
	}
}

// Validate rejects configurations the engine cannot run with.
func Validate(cfg *AppConfig) error {
	if cfg.Monitor.PollingInterval <= 0 {
		return fmt.Errorf("polling_interval must be positive, got %v", cfg.Monitor.PollingInterval)
	}
	if cfg.Monitor.AttemptTimeout >= cfg.Monitor.PollingInterval*2 {
		return fmt.Errorf(
			"attempt_timeout %v must stay well under the polling cadence %v",
			cfg.Monitor.AttemptTimeout, cfg.Monitor.PollingInterval,
		)
	}
	for i, d := range cfg.Monitor.FastBackoff {
		if d <= 0 {
			return fmt.Errorf("fast_backoff[%d] must be positive", i)
		}
	}
	for i, d := range cfg.Monitor.SlowBackoff {
		if d <= 0 {
			return fmt.Errorf("slow_backoff[%d] must be positive", i)
		}
	}
	return nil
}
