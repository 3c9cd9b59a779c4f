package config

import (
	"time"

	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/core/domain"
	redisclient "github.com/caretapps-developer/gb2-terminal-monorepo/internal/infra/redis"
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	TerminalID string             `yaml:"terminal_id"`
	Server     ServerConfig       `yaml:"server"`
	Monitor    MonitorConfig      `yaml:"monitor"`
	Intents    IntentConfig       `yaml:"intents"`
	Logging    LoggingConfig      `yaml:"logging"`
	Redis      redisclient.Config `yaml:"redis"`
	Database   postgres.Config    `yaml:"database"`
}

// ServerConfig holds the observability server settings.
type ServerConfig struct {
	Port     int `yaml:"port"`
	GRPCPort int `yaml:"grpc_port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// MonitorConfig holds the health-monitoring and recovery settings.
type MonitorConfig struct {
	PollingInterval     time.Duration   `yaml:"polling_interval"`
	SecurityRebootGrace time.Duration   `yaml:"security_reboot_grace"`
	FastBackoff         []time.Duration `yaml:"fast_backoff"`
	SlowBackoff         []time.Duration `yaml:"slow_backoff"`
	IntentHardTimeout   time.Duration   `yaml:"intent_hard_timeout"`
	IntentProactiveAge  time.Duration   `yaml:"intent_proactive_age"`
	StuckAwaitingInput  time.Duration   `yaml:"stuck_awaiting_input"`
	AttemptTimeout      time.Duration   `yaml:"attempt_timeout"`
	BlipSettleDelay     time.Duration   `yaml:"blip_settle_delay"`
	MilestoneEvery      int             `yaml:"milestone_every"`
	JournalDepth        int             `yaml:"journal_depth"`
	DeviceFilter        string          `yaml:"device_filter"`
}

// IntentConfig holds the zero-touch intent recreation defaults.
type IntentConfig struct {
	AmountMinor int64  `yaml:"amount_minor"`
	Category    string `yaml:"category"`
	Layout      string `yaml:"layout"` // manual, zero_touch
}

// LayoutKind maps the configured layout string onto the domain type.
// Anything unrecognized falls back to manual, the less autonomous mode.
func (c IntentConfig) LayoutKind() domain.LayoutKind {
	if c.Layout == string(domain.LayoutZeroTouch) {
		return domain.LayoutZeroTouch
	}
	return domain.LayoutManual
}
