package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/core/domain"
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/infra/intents"
)

// GuardAction is the lifecycle guard's verdict for one cycle.
type GuardAction string

const (
	GuardNone             GuardAction = ""
	GuardHardTimeout      GuardAction = "hard_timeout"
	GuardProactiveRefresh GuardAction = "proactive_refresh"
	GuardStuckInput       GuardAction = "stuck_input"
)

// GuardConfig holds the lifecycle thresholds.
type GuardConfig struct {
	HardTimeout   time.Duration // force-cancel + recreate
	ProactiveAge  time.Duration // cancel + recreate before the server expires it
	StuckAwaiting time.Duration // cancel only
}

// Guard watches transaction age and input liveness independently of reader
// health. It is stateless: the decision is re-derived from the snapshot every
// cycle, so a failed corrective action is naturally retried on the next tick.
type Guard struct {
	cfg     GuardConfig
	intents *intents.Service
	log     *slog.Logger
}

// NewGuard creates a lifecycle guard.
func NewGuard(cfg GuardConfig, svc *intents.Service, log *slog.Logger) *Guard {
	if log == nil {
		log = slog.Default()
	}
	return &Guard{cfg: cfg, intents: svc, log: log}
}

// Check returns the first matching lifecycle action, in strict priority
// order. At most one action applies per cycle.
func (g *Guard) Check(s domain.HealthSnapshot, now time.Time) GuardAction {
	if !s.HasIntent() {
		return GuardNone
	}

	age := s.IntentAge(now)
	switch {
	case age >= g.cfg.HardTimeout:
		return GuardHardTimeout
	case age >= g.cfg.ProactiveAge:
		return GuardProactiveRefresh
	}

	if !s.AwaitingInputSince.IsZero() && now.Sub(s.AwaitingInputSince) >= g.cfg.StuckAwaiting {
		return GuardStuckInput
	}

	return GuardNone
}

// Apply executes a lifecycle action immediately, without backoff. Recreation
// is honored automatically only for the zero-touch layout; manual layouts are
// cleared and left to explicit user action.
func (g *Guard) Apply(ctx context.Context, action GuardAction, s domain.HealthSnapshot) error {
	switch action {
	case GuardHardTimeout, GuardProactiveRefresh:
		if s.Layout == domain.LayoutZeroTouch {
			_, err := g.intents.Recreate(ctx, s.OfflineMode.IsTrue())
			return err
		}
		return g.intents.Cancel(ctx)

	case GuardStuckInput:
		return g.intents.Cancel(ctx)

	default:
		return nil
	}
}
