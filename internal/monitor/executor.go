package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/core/domain"
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/infra/device"
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/infra/intents"
)

// ErrBusy is returned when a reconnection sequence is already in flight and
// the new trigger chose not to supersede it.
var ErrBusy = errors.New("reconnection already in flight")

// ErrNoBondedDevice is returned when the terminal has never paired a reader.
var ErrNoBondedDevice = errors.New("no bonded device to reconnect")

// ExecutorConfig holds the executor's bounds.
type ExecutorConfig struct {
	AttemptTimeout time.Duration
	DeviceFilter   string
}

// Executor performs the concrete remediation for a classified failure. At
// most one reconnection sequence runs at a time; a fresher trigger supersedes
// an outstanding attempt by canceling its context first.
type Executor struct {
	cfg     ExecutorConfig
	gateway device.Gateway
	intents *intents.Service
	log     *slog.Logger

	busy     atomic.Bool
	cancelMu sync.Mutex
	cancel   context.CancelFunc
}

// NewExecutor creates a recovery executor.
func NewExecutor(cfg ExecutorConfig, gw device.Gateway, svc *intents.Service, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}
	return &Executor{cfg: cfg, gateway: gw, intents: svc, log: log}
}

// Execute runs the remediation for rtype. Failures are returned, never
// thrown: the caller records them as a failed attempt and defers to backoff.
func (e *Executor) Execute(ctx context.Context, rtype domain.RecoveryType, snap domain.HealthSnapshot) error {
	switch rtype {
	case domain.RecoveryNone:
		return nil
	case domain.RecoverySDKOffline:
		// Passive: nothing to do but wait for the network to return.
		e.log.Info("sdk offline, waiting for network", "offline_mode", snap.OfflineMode)
		return nil
	default:
		return e.reconnect(ctx, rtype, snap)
	}
}

// Supersede cancels any outstanding reconnection attempt. Idempotent.
func (e *Executor) Supersede() {
	e.cancelMu.Lock()
	defer e.cancelMu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

func (e *Executor) reconnect(ctx context.Context, rtype domain.RecoveryType, snap domain.HealthSnapshot) error {
	if !e.busy.CompareAndSwap(false, true) {
		// Cancel the stale attempt; this trigger has fresher state. The
		// outstanding goroutine releases the flag on its way out, so this
		// cycle still reports busy and retries per backoff.
		e.Supersede()
		return ErrBusy
	}
	defer e.busy.Store(false)

	bonded := e.gateway.BondedDeviceID()
	if bonded == "" {
		return ErrNoBondedDevice
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.AttemptTimeout)
	defer cancel()
	e.setCancel(cancel)
	defer e.setCancel(nil)

	// Reset discovery state before scanning again.
	if err := e.gateway.CancelDiscovery(ctx); err != nil {
		e.log.Debug("cancel discovery failed", "error", err)
	}
	e.gateway.ClearDiscoveredDevices()

	found, err := e.gateway.StartDiscovery(ctx, e.cfg.DeviceFilter)
	if err != nil {
		return fmt.Errorf("failed to start discovery: %w", err)
	}

	deviceID, err := e.awaitBonded(ctx, found, bonded)
	if err != nil {
		return err
	}

	if err := e.gateway.Connect(ctx, deviceID); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", deviceID, err)
	}

	e.log.Info("reader reconnected", "device", deviceID, "recovery", rtype)

	// A zero-touch terminal should resume awaiting a card immediately.
	if snap.Layout == domain.LayoutZeroTouch {
		if _, err := e.intents.Recreate(ctx, snap.OfflineMode.IsTrue()); err != nil {
			return fmt.Errorf("reconnected but failed to recreate intent: %w", err)
		}
	}
	return nil
}

// awaitBonded waits for the previously bound device to reappear in the
// discovery stream, bounded by the attempt timeout.
func (e *Executor) awaitBonded(ctx context.Context, found <-chan device.DiscoveredDevice, bonded string) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("discovery timed out waiting for %s: %w", bonded, ctx.Err())
		case d, ok := <-found:
			if !ok {
				return "", fmt.Errorf("discovery ended without finding %s", bonded)
			}
			if d.ID == bonded {
				return d.ID, nil
			}
		}
	}
}

func (e *Executor) setCancel(fn context.CancelFunc) {
	e.cancelMu.Lock()
	e.cancel = fn
	e.cancelMu.Unlock()
}
