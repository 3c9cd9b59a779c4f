// Package monitor implements the autonomous health-monitoring and recovery
// engine: sample, gate, guard, classify, schedule, execute — every cycle,
// indefinitely.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/core/domain"
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/monitor/metrics"
)

// Journal receives every observability event, best effort.
type Journal interface {
	Append(ctx context.Context, event any) error
	SetStatus(ctx context.Context, status any) error
}

// Audit receives durable milestone and recovered events.
type Audit interface {
	Insert(ctx context.Context, ev *domain.RecoveryEvent) error
}

// Config holds the monitor's cadence and bounds.
type Config struct {
	TerminalID      string
	PollingInterval time.Duration
	AttemptTimeout  time.Duration
}

// CycleReport is the read-only view of the last completed cycle.
type CycleReport struct {
	At             time.Time             `json:"at"`
	Classification domain.RecoveryType   `json:"classification"`
	Action         string                `json:"action"`
	SkipReason     string                `json:"skip_reason,omitempty"`
	State          domain.RecoveryState  `json:"state"`
	Snapshot       domain.HealthSnapshot `json:"snapshot"`
}

// Monitor drives the recurring health cycle. RecoveryState has a single
// writer (the cycle goroutine); observers read published copies.
type Monitor struct {
	cfg       Config
	sampler   *Sampler
	gate      *Gate
	guard     *Guard
	scheduler *Scheduler
	executor  *Executor
	journal   Journal // nil-able
	audit     Audit   // nil-able
	log       *slog.Logger

	running atomic.Bool
	stop    chan struct{}
	kick    chan struct{}

	mu   sync.RWMutex
	last CycleReport
}

// New creates a monitor over fully constructed stages.
func New(
	cfg Config,
	sampler *Sampler,
	gate *Gate,
	guard *Guard,
	scheduler *Scheduler,
	executor *Executor,
	journal Journal,
	audit Audit,
	log *slog.Logger,
) *Monitor {
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{
		cfg:       cfg,
		sampler:   sampler,
		gate:      gate,
		guard:     guard,
		scheduler: scheduler,
		executor:  executor,
		journal:   journal,
		audit:     audit,
		log:       log,
		stop:      make(chan struct{}),
		kick:      make(chan struct{}, 1),
	}
}

// Start begins the polling loop. It blocks until Stop or context cancellation.
func (m *Monitor) Start(ctx context.Context) error {
	if !m.running.CompareAndSwap(false, true) {
		return fmt.Errorf("monitor already running")
	}
	defer m.running.Store(false)

	ticker := time.NewTicker(m.cfg.PollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-m.stop:
			return nil
		case <-ticker.C:
			m.runCycle(ctx)
		case <-m.kick:
			m.runCycle(ctx)
		}
	}
}

// Stop ends the polling loop.
func (m *Monitor) Stop() error {
	if m.running.Load() {
		close(m.stop)
	}
	return nil
}

// Kick requests an ad-hoc cycle outside the polling cadence. Non-blocking.
func (m *Monitor) Kick() {
	select {
	case m.kick <- struct{}{}:
	default:
	}
}

// Status returns the last completed cycle's report.
func (m *Monitor) Status() CycleReport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// runCycle executes one Sampler → Gate → Guard → Evaluator → Scheduler →
// Executor pass. Every failure inside degrades to "re-evaluate next cycle".
func (m *Monitor) runCycle(ctx context.Context) {
	now := time.Now()
	snap := m.sampler.Sample(now)

	report := CycleReport{At: now, Snapshot: snap, State: m.scheduler.State()}

	if gd := m.gate.Check(snap, now); !gd.Proceed {
		report.Action = "suppressed"
		report.SkipReason = gd.Reason
		metrics.CyclesSuppressed.WithLabelValues(gd.Reason).Inc()
		m.log.Debug("cycle suppressed", "reason", gd.Reason)
		m.publish(ctx, report, nil)
		return
	}

	if action := m.guard.Check(snap, now); action != GuardNone {
		m.applyGuard(ctx, action, snap, &report)
		m.publish(ctx, report, nil)
		return
	}

	prev := m.scheduler.State()
	rtype := Evaluate(snap)
	decision := m.scheduler.Observe(rtype, now)
	report.Classification = rtype
	report.State = decision.State
	metrics.CyclesTotal.WithLabelValues(rtype.String()).Inc()
	m.updateGauges(decision.State)

	if rtype == domain.RecoveryNone {
		report.Action = "healthy"
		var recovered *domain.RecoveryEvent
		if prev.Type != domain.RecoveryNone && prev.Type != "" {
			recovered = m.onRecovered(prev, now)
		}
		m.publish(ctx, report, recovered)
		return
	}

	if !decision.Execute {
		report.Action = "backoff_wait"
		m.log.Debug("recovery deferred by backoff",
			"type", rtype, "attempts", decision.State.AttemptCount, "wait", decision.Wait)
		m.publish(ctx, report, nil)
		return
	}

	report.Action = "attempt"
	err := m.executor.Execute(ctx, rtype, snap)
	result := "ok"
	if err != nil {
		result = "failed"
		m.log.Warn("recovery attempt failed",
			"type", rtype, "attempt", decision.State.AttemptCount, "error", err)
	} else {
		// Resample promptly so a successful reconnect is observed before the
		// next tick.
		m.Kick()
	}
	metrics.RecoveryAttempts.WithLabelValues(rtype.String(), result).Inc()

	m.log.Info("recovery attempt executed",
		"type", rtype,
		"attempt", decision.State.AttemptCount,
		"elapsed", decision.State.Elapsed(now),
		"result", result,
	)

	var durable *domain.RecoveryEvent
	if decision.Milestone {
		durable = m.milestoneEvent(decision.State, now)
		m.log.Warn("recovery milestone",
			"type", rtype,
			"attempts", decision.State.AttemptCount,
			"down_for", decision.State.Elapsed(now),
		)
	}
	m.publish(ctx, report, durable)
}

func (m *Monitor) applyGuard(ctx context.Context, action GuardAction, snap domain.HealthSnapshot, report *CycleReport) {
	report.Action = "guard_" + string(action)
	metrics.GuardActions.WithLabelValues(string(action)).Inc()

	actx, cancel := context.WithTimeout(ctx, m.cfg.AttemptTimeout)
	defer cancel()

	if err := m.guard.Apply(actx, action, snap); err != nil {
		// The guard is stateless; the next tick re-derives the decision from
		// fresh data and retries.
		m.log.Warn("lifecycle guard action failed", "action", action, "error", err)
		return
	}
	m.log.Info("lifecycle guard action applied",
		"action", action, "intent", snap.IntentID, "age", snap.IntentAge(report.At))

	m.appendJournal(ctx, &domain.RecoveryEvent{
		ID:         uuid.New().String(),
		TerminalID: m.cfg.TerminalID,
		Kind:       domain.EventGuardAction,
		Action:     string(action),
		At:         report.At,
	})
}

func (m *Monitor) onRecovered(prev domain.RecoveryState, now time.Time) *domain.RecoveryEvent {
	elapsed := prev.Elapsed(now)
	metrics.RecoveryDuration.WithLabelValues(prev.Type.String()).Observe(elapsed.Seconds())
	m.log.Info("recovery successful",
		"type", prev.Type, "attempts", prev.AttemptCount, "down_for", elapsed)

	return &domain.RecoveryEvent{
		ID:           uuid.New().String(),
		TerminalID:   m.cfg.TerminalID,
		Kind:         domain.EventRecovered,
		RecoveryType: prev.Type,
		Attempt:      prev.AttemptCount,
		Elapsed:      elapsed,
		At:           now,
	}
}

func (m *Monitor) milestoneEvent(state domain.RecoveryState, now time.Time) *domain.RecoveryEvent {
	return &domain.RecoveryEvent{
		ID:           uuid.New().String(),
		TerminalID:   m.cfg.TerminalID,
		Kind:         domain.EventMilestone,
		RecoveryType: state.Type,
		Attempt:      state.AttemptCount,
		Elapsed:      state.Elapsed(now),
		At:           now,
	}
}

// publish stores the report for observers and writes sinks best effort.
func (m *Monitor) publish(ctx context.Context, report CycleReport, durable *domain.RecoveryEvent) {
	m.mu.Lock()
	m.last = report
	m.mu.Unlock()

	if durable != nil {
		m.appendJournal(ctx, durable)
		if m.audit != nil {
			wctx, cancel := context.WithTimeout(ctx, 2*time.Second)
			if err := m.audit.Insert(wctx, durable); err != nil {
				m.log.Debug("audit insert failed", "error", err)
			}
			cancel()
		}
	}

	if m.journal != nil {
		wctx, cancel := context.WithTimeout(ctx, time.Second)
		if err := m.journal.SetStatus(wctx, report); err != nil {
			m.log.Debug("status publish failed", "error", err)
		}
		cancel()
	}
}

func (m *Monitor) appendJournal(ctx context.Context, ev *domain.RecoveryEvent) {
	if m.journal == nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := m.journal.Append(wctx, ev); err != nil {
		m.log.Debug("journal append failed", "error", err)
	}
}

func (m *Monitor) updateGauges(state domain.RecoveryState) {
	for _, t := range []domain.RecoveryType{
		domain.RecoveryReaderDisconnected,
		domain.RecoveryReaderNotReady,
		domain.RecoveryReaderOffline,
		domain.RecoverySDKOffline,
		domain.RecoveryTapToPayNotWaiting,
	} {
		v := 0.0
		if t == state.Type {
			v = 1.0
		}
		metrics.ActiveRecovery.WithLabelValues(t.String()).Set(v)
	}
	metrics.AttemptCount.Set(float64(state.AttemptCount))
}
