package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/control"
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/core/config"
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/core/domain"
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/infra/simulator"
)

func simConfig() *config.AppConfig {
	cfg := &config.AppConfig{
		TerminalID: "term_e2e",
		Intents: config.IntentConfig{
			AmountMinor: 1500,
			Category:    "wash",
			Layout:      "zero_touch",
		},
	}
	config.ApplyDefaults(cfg)

	// Short cadence so the test observes several cycles quickly.
	cfg.Server.Port = 0
	cfg.Server.GRPCPort = 0
	cfg.Monitor.PollingInterval = 100 * time.Millisecond
	cfg.Monitor.FastBackoff = []time.Duration{50 * time.Millisecond}
	cfg.Monitor.SlowBackoff = []time.Duration{50 * time.Millisecond}
	cfg.Monitor.AttemptTimeout = 150 * time.Millisecond
	cfg.Monitor.BlipSettleDelay = 10 * time.Millisecond
	return cfg
}

func TestGracefulShutdown(t *testing.T) {
	sim := simulator.New(domain.LayoutZeroTouch)
	terminal, err := control.NewTerminal(simConfig(), control.Deps{
		Status:       sim,
		Gateway:      sim,
		Feed:         sim,
		IntentClient: sim,
	})
	if err != nil {
		t.Fatalf("Failed to create terminal: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	if err := terminal.Start(ctx); err != nil {
		t.Fatalf("Failed to start terminal: %v", err)
	}

	// Let it run for a bit
	time.Sleep(500 * time.Millisecond)

	// Trigger shutdown
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()

	if err := terminal.Stop(stopCtx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}

func TestReaderDisconnectRecovery(t *testing.T) {
	sim := simulator.New(domain.LayoutZeroTouch)
	terminal, err := control.NewTerminal(simConfig(), control.Deps{
		Status:       sim,
		Gateway:      sim,
		Feed:         sim,
		IntentClient: sim,
	})
	if err != nil {
		t.Fatalf("Failed to create terminal: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := terminal.Start(ctx); err != nil {
		t.Fatalf("Failed to start terminal: %v", err)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		_ = terminal.Stop(stopCtx)
	}()

	// Wait for the first healthy cycle.
	waitForAction(t, terminal, "healthy", 3*time.Second)

	// Drop the reader; the engine should classify, reconnect and settle back
	// to healthy without any outside help.
	sim.DropReader(domain.DisconnectBluetooth)
	waitForAction(t, terminal, "attempt", 3*time.Second)
	waitForAction(t, terminal, "healthy", 3*time.Second)

	if sim.ConnectionState() != domain.ConnConnected {
		t.Errorf("reader not reconnected, state %q", sim.ConnectionState())
	}
}

func TestSuppressionDuringSoftwareUpdate(t *testing.T) {
	sim := simulator.New(domain.LayoutZeroTouch)
	sim.SetSoftwareUpdate(true)
	sim.DropReader(domain.DisconnectBluetooth)

	terminal, err := control.NewTerminal(simConfig(), control.Deps{
		Status:       sim,
		Gateway:      sim,
		Feed:         sim,
		IntentClient: sim,
	})
	if err != nil {
		t.Fatalf("Failed to create terminal: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := terminal.Start(ctx); err != nil {
		t.Fatalf("Failed to start terminal: %v", err)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		_ = terminal.Stop(stopCtx)
	}()

	waitForAction(t, terminal, "suppressed", 3*time.Second)

	// The update finishes; the very next cycles are free to recover.
	sim.SetSoftwareUpdate(false)
	waitForAction(t, terminal, "healthy", 3*time.Second)
}

func waitForAction(t *testing.T, terminal *control.Terminal, action string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if terminal.Monitor().Status().Action == action {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("never observed action %q, last report %+v", action, terminal.Monitor().Status())
}
