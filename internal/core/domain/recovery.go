package domain

import "time"

// RecoveryType classifies an unhealthy snapshot into the single remediation
// that applies. Exactly one type is active at a time.
type RecoveryType string

const (
	RecoveryNone               RecoveryType = "none"
	RecoveryReaderDisconnected RecoveryType = "reader_disconnected"
	RecoveryReaderNotReady     RecoveryType = "reader_not_ready"
	RecoveryReaderOffline      RecoveryType = "reader_offline"
	RecoverySDKOffline         RecoveryType = "sdk_offline"
	RecoveryTapToPayNotWaiting RecoveryType = "tap_to_pay_not_waiting"
)

// BackoffClass groups recovery types by how aggressively they are retried.
type BackoffClass string

const (
	// BackoffFast covers hardware-reconnection failures.
	BackoffFast BackoffClass = "fast"
	// BackoffSlow covers network-outage failures where retrying does nothing
	// but log.
	BackoffSlow BackoffClass = "slow"
)

// Class returns the backoff class for a recovery type.
func (t RecoveryType) Class() BackoffClass {
	if t == RecoverySDKOffline {
		return BackoffSlow
	}
	return BackoffFast
}

func (t RecoveryType) String() string { return string(t) }

// RecoveryState is the scheduler's bookkeeping for the active recovery.
// It has a single writer (the monitor cycle); everyone else sees copies.
type RecoveryState struct {
	Type           RecoveryType `json:"type"`
	AttemptCount   int          `json:"attempt_count"`
	FirstFailureAt time.Time    `json:"first_failure_at,omitempty"`
	LastAttemptAt  time.Time    `json:"last_attempt_at,omitempty"`
}

// Elapsed returns how long the current failure has persisted at now.
func (s RecoveryState) Elapsed(now time.Time) time.Duration {
	if s.Type == RecoveryNone || s.Type == "" || s.FirstFailureAt.IsZero() {
		return 0
	}
	return now.Sub(s.FirstFailureAt)
}
