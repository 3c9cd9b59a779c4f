package monitor

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/core/domain"
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/infra/device"
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/infra/intents"
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/monitor/metrics"
)

// BlipWatcher is the event-driven fast path for connectivity flips during the
// awaiting-card window. The relevant failure window is seconds, not minutes,
// so it bypasses the polling cadence entirely. Zero-touch layout only.
//
// It mutates only the transaction resource, never RecoveryState; the intent
// service serializes its cancel/recreate with the polled cycle's.
type BlipWatcher struct {
	feed    device.ConnectivityFeed
	status  device.StatusSource
	intents *intents.Service
	settle  time.Duration
	log     *slog.Logger

	inFlight atomic.Bool
}

// NewBlipWatcher creates the fast-path watcher.
func NewBlipWatcher(
	feed device.ConnectivityFeed,
	status device.StatusSource,
	svc *intents.Service,
	settle time.Duration,
	log *slog.Logger,
) *BlipWatcher {
	if log == nil {
		log = slog.Default()
	}
	return &BlipWatcher{feed: feed, status: status, intents: svc, settle: settle, log: log}
}

// Run subscribes to connectivity transitions and handles them until the
// context is done.
func (w *BlipWatcher) Run(ctx context.Context) error {
	events, err := w.feed.Subscribe(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		}
	}
}

func (w *BlipWatcher) handle(ctx context.Context, ev device.ConnectivityEvent) {
	if w.status.Layout() != domain.LayoutZeroTouch {
		return
	}
	if w.status.Readiness() != domain.ReadinessAwaitingInput {
		return
	}

	// Re-entrancy flag: overlapping flips produce exactly one
	// cancel/recreate pair.
	if !w.inFlight.CompareAndSwap(false, true) {
		metrics.NetworkBlips.WithLabelValues("coalesced").Inc()
		w.log.Debug("connectivity flip coalesced", "online", ev.Online)
		return
	}

	go func() {
		defer w.inFlight.Store(false)

		w.log.Info("connectivity flip during awaiting-input", "online", ev.Online)

		if err := w.intents.Cancel(ctx); err != nil {
			w.log.Warn("fast-path cancel failed", "error", err)
		}

		// Let the transport settle before recreating against the new
		// connectivity state.
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.settle):
		}

		offline := w.status.OfflineModeEnabled().IsTrue() && !w.status.NetworkOnline().IsTrue()
		if _, err := w.intents.Recreate(ctx, offline); err != nil {
			metrics.NetworkBlips.WithLabelValues("failed").Inc()
			w.log.Warn("fast-path recreate failed", "error", err)
			return
		}
		metrics.NetworkBlips.WithLabelValues("handled").Inc()
	}()
}
