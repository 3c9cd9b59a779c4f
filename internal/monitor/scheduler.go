package monitor

import (
	"time"

	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/core/domain"
)

// BackoffPolicy is an ordered wait-duration sequence whose last entry repeats
// as a ceiling.
type BackoffPolicy struct {
	Steps []time.Duration
}

// Delay returns the required wait before the attempt following `executed`
// prior attempts of the same type.
func (p BackoffPolicy) Delay(executed int) time.Duration {
	if len(p.Steps) == 0 {
		return 0
	}
	idx := executed
	if idx < 0 {
		idx = 0
	}
	if idx >= len(p.Steps) {
		idx = len(p.Steps) - 1
	}
	return p.Steps[idx]
}

// SchedulerConfig holds the per-class backoff tables.
type SchedulerConfig struct {
	Fast           BackoffPolicy
	Slow           BackoffPolicy
	MilestoneEvery int
}

// Decision is the scheduler's verdict for one classified cycle.
type Decision struct {
	Execute   bool
	Milestone bool
	Wait      time.Duration // remaining wait when Execute is false
	State     domain.RecoveryState
}

// Scheduler keeps the per-type attempt/backoff bookkeeping. It is the single
// writer of RecoveryState; the monitor cycle calls it sequentially and
// observers only ever see copies.
//
// There is no maximum attempt count: the engine retries indefinitely and
// surfaces milestone events instead of giving up.
type Scheduler struct {
	cfg   SchedulerConfig
	state domain.RecoveryState
}

// NewScheduler creates a scheduler with the given backoff tables.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.MilestoneEvery <= 0 {
		cfg.MilestoneEvery = 10
	}
	return &Scheduler{
		cfg:   cfg,
		state: domain.RecoveryState{Type: domain.RecoveryNone},
	}
}

// Observe folds a fresh classification into the recovery state and decides
// whether to execute now.
func (s *Scheduler) Observe(rtype domain.RecoveryType, now time.Time) Decision {
	if rtype == domain.RecoveryNone {
		s.state = domain.RecoveryState{Type: domain.RecoveryNone}
		return Decision{State: s.state}
	}

	if rtype != s.state.Type {
		// New failure class: reset bookkeeping and act immediately.
		s.state = domain.RecoveryState{
			Type:           rtype,
			AttemptCount:   1,
			FirstFailureAt: now,
			LastAttemptAt:  now,
		}
		return Decision{Execute: true, State: s.state}
	}

	required := s.policyFor(rtype).Delay(s.state.AttemptCount - 1)
	elapsed := now.Sub(s.state.LastAttemptAt)
	if elapsed < required {
		return Decision{Wait: required - elapsed, State: s.state}
	}

	s.state.AttemptCount++
	s.state.LastAttemptAt = now
	milestone := s.state.AttemptCount%s.cfg.MilestoneEvery == 0
	return Decision{Execute: true, Milestone: milestone, State: s.state}
}

// State returns a copy of the current recovery state.
func (s *Scheduler) State() domain.RecoveryState {
	return s.state
}

func (s *Scheduler) policyFor(rtype domain.RecoveryType) BackoffPolicy {
	if rtype.Class() == domain.BackoffSlow {
		return s.cfg.Slow
	}
	return s.cfg.Fast
}
