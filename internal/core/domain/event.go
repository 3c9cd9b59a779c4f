package domain

import "time"

// EventKind labels an observability event emitted by the engine.
type EventKind string

const (
	EventCycle       EventKind = "cycle"
	EventSuppressed  EventKind = "suppressed"
	EventAttempt     EventKind = "attempt"
	EventMilestone   EventKind = "milestone"
	EventRecovered   EventKind = "recovered"
	EventGuardAction EventKind = "guard_action"
	EventNetworkBlip EventKind = "network_blip"
)

// RecoveryEvent is the structured record written to the journal and, for
// milestone and recovered events, to the audit store.
type RecoveryEvent struct {
	ID           string        `json:"id" db:"id"`
	TerminalID   string        `json:"terminal_id" db:"terminal_id"`
	Kind         EventKind     `json:"kind" db:"kind"`
	RecoveryType RecoveryType  `json:"recovery_type" db:"recovery_type"`
	Action       string        `json:"action,omitempty" db:"action"`
	Attempt      int           `json:"attempt" db:"attempt"`
	Elapsed      time.Duration `json:"elapsed" db:"elapsed"`
	Reason       string        `json:"reason,omitempty" db:"reason"`
	At           time.Time     `json:"at" db:"at"`
}
