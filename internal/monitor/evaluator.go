package monitor

import (
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/core/domain"
)

// rule is one (predicate, outcome) pair of the classification chain.
type rule struct {
	name    string
	match   func(domain.HealthSnapshot) bool
	outcome domain.RecoveryType
}

// classificationRules is the full priority order of the condition evaluator.
// First match wins. The order is load-bearing and covered by tests; do not
// reorder without updating them.
//
// Tri-state folding: a signal that could not be read is Unknown, and Unknown
// never satisfies a health requirement, so every predicate asks for the
// healthy value explicitly (IsTrue) and treats everything else as unhealthy.
var classificationRules = []rule{
	{
		name: "sdk offline",
		match: func(s domain.HealthSnapshot) bool {
			return !s.NetworkOnline.IsTrue() && !s.OfflineMode.IsTrue()
		},
		outcome: domain.RecoverySDKOffline,
	},
	{
		// Offline mode makes a dark network an expected condition.
		name: "sdk offline, offline mode",
		match: func(s domain.HealthSnapshot) bool {
			return !s.NetworkOnline.IsTrue() && s.OfflineMode.IsTrue()
		},
		outcome: domain.RecoveryNone,
	},
	{
		name: "reader disconnected",
		match: func(s domain.HealthSnapshot) bool {
			return s.ConnectionState != domain.ConnConnected
		},
		outcome: domain.RecoveryReaderDisconnected,
	},
	{
		name: "reader and host offline",
		match: func(s domain.HealthSnapshot) bool {
			return !s.ReaderOnline.IsTrue() && !s.OfflineMode.IsTrue() && !s.NetworkOnline.IsTrue()
		},
		outcome: domain.RecoveryReaderOffline,
	},
	{
		// Readers without their own network egress self-report "offline" at
		// the hardware layer even while fully functional through the paired
		// host. Reader-offline alone is healthy when offline mode is on; the
		// unhealthy signal is reader-offline and host-offline together.
		name: "reader offline, offline mode",
		match: func(s domain.HealthSnapshot) bool {
			return !s.ReaderOnline.IsTrue() && s.OfflineMode.IsTrue()
		},
		outcome: domain.RecoveryNone,
	},
	{
		name: "tap to pay not waiting",
		match: func(s domain.HealthSnapshot) bool {
			return s.Layout == domain.LayoutZeroTouch && s.Readiness != domain.ReadinessAwaitingInput
		},
		outcome: domain.RecoveryTapToPayNotWaiting,
	},
	{
		name: "reader not ready",
		match: func(s domain.HealthSnapshot) bool {
			return s.Layout == domain.LayoutManual &&
				s.Readiness != domain.ReadinessReady &&
				s.Readiness != domain.ReadinessAwaitingInput
		},
		outcome: domain.RecoveryReaderNotReady,
	},
}

// Evaluate classifies a snapshot into the single recovery type that applies.
// It is a total, deterministic function with no state.
func Evaluate(s domain.HealthSnapshot) domain.RecoveryType {
	for _, r := range classificationRules {
		if r.match(s) {
			return r.outcome
		}
	}
	return domain.RecoveryNone
}
