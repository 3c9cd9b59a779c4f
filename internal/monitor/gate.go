package monitor

import (
	"time"

	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/core/domain"
)

// Suppression reasons reported on skipped cycles.
const (
	SkipSoftwareUpdate = "software_update_in_progress"
	SkipRebootGrace    = "security_reboot_grace"
	SkipNotInSession   = "not_in_payment_session"
)

// GateDecision is the suppression gate's verdict for one cycle.
type GateDecision struct {
	Proceed bool
	Reason  string
}

// Gate short-circuits a cycle when recovery must not run. The reboot grace
// window is computed from the snapshot's disconnect timestamp, so suppression
// is bounded and deterministic rather than timer-driven.
type Gate struct {
	rebootGrace time.Duration
}

// NewGate creates a gate with the configured security-reboot grace window.
func NewGate(rebootGrace time.Duration) *Gate {
	return &Gate{rebootGrace: rebootGrace}
}

// Check decides whether the cycle may proceed to evaluation.
func (g *Gate) Check(s domain.HealthSnapshot, now time.Time) GateDecision {
	if s.SoftwareUpdateInProgress.IsTrue() {
		return GateDecision{Reason: SkipSoftwareUpdate}
	}

	if s.LastDisconnectReason == domain.DisconnectSecurityReboot && !s.LastDisconnectAt.IsZero() {
		if now.Sub(s.LastDisconnectAt) <= g.rebootGrace {
			return GateDecision{Reason: SkipRebootGrace}
		}
	}

	if !s.InPaymentSession {
		return GateDecision{Reason: SkipNotInSession}
	}

	return GateDecision{Proceed: true}
}
