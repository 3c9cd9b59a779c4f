package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CyclesTotal tracks health cycles by classification outcome
	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terminal_health_cycles_total",
			Help: "Total number of health cycles by classification",
		},
		[]string{"classification"},
	)

	// CyclesSuppressed tracks cycles skipped by the suppression gate
	CyclesSuppressed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terminal_health_cycles_suppressed_total",
			Help: "Total number of suppressed health cycles",
		},
		[]string{"reason"},
	)

	// RecoveryAttempts tracks executed recovery attempts per type and result
	RecoveryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terminal_recovery_attempts_total",
			Help: "Total number of executed recovery attempts",
		},
		[]string{"type", "result"},
	)

	// RecoveryDuration tracks total outage duration once recovery succeeds
	RecoveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "terminal_recovery_duration_seconds",
			Help:    "Time from first failure to successful recovery",
			Buckets: []float64{30, 60, 120, 300, 600, 1800, 3600, 14400},
		},
		[]string{"type"},
	)

	// GuardActions tracks payment-intent lifecycle corrections
	GuardActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terminal_intent_guard_actions_total",
			Help: "Total number of payment-intent lifecycle corrections",
		},
		[]string{"action"},
	)

	// NetworkBlips tracks fast-path connectivity flips during awaiting-input
	NetworkBlips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terminal_network_blips_total",
			Help: "Total number of connectivity flips handled by the fast path",
		},
		[]string{"result"},
	)

	// ActiveRecovery reflects the currently active recovery type (one-hot)
	ActiveRecovery = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "terminal_active_recovery",
			Help: "1 for the currently active recovery type, else 0",
		},
		[]string{"type"},
	)

	// AttemptCount reflects the current attempt count of the active recovery
	AttemptCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "terminal_recovery_attempt_count",
			Help: "Attempt count of the active recovery, 0 when healthy",
		},
	)
)
