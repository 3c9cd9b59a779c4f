package monitor

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/core/domain"
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/infra/intents"
)

func testGuard(client intents.Client) (*Guard, *intents.Service) {
	svc := intents.NewService(client, domain.IntentParams{AmountMinor: 1500, Category: "wash"}, slog.Default())
	g := NewGuard(GuardConfig{
		HardTimeout:   3600 * time.Second,
		ProactiveAge:  3000 * time.Second,
		StuckAwaiting: 300 * time.Second,
	}, svc, slog.Default())
	return g, svc
}

func intentSnapshot(layout domain.LayoutKind, age time.Duration, now time.Time) domain.HealthSnapshot {
	s := healthySnapshot(layout)
	s.InPaymentSession = true
	s.IntentID = "pi_test"
	s.IntentCreatedAt = now.Add(-age)
	return s
}

func TestGuard_NoIntentNoAction(t *testing.T) {
	g, _ := testGuard(&mockIntentClient{})
	s := healthySnapshot(domain.LayoutZeroTouch)

	if a := g.Check(s, time.Now()); a != GuardNone {
		t.Errorf("expected no action without an intent, got %s", a)
	}
}

func TestGuard_FreshIntentNoAction(t *testing.T) {
	g, _ := testGuard(&mockIntentClient{})
	now := time.Now()

	if a := g.Check(intentSnapshot(domain.LayoutZeroTouch, 10*time.Minute, now), now); a != GuardNone {
		t.Errorf("expected no action at 10min, got %s", a)
	}
}

// Age 51min fires the proactive branch, not hard timeout.
func TestGuard_ProactiveAt51Minutes(t *testing.T) {
	g, _ := testGuard(&mockIntentClient{})
	now := time.Now()

	if a := g.Check(intentSnapshot(domain.LayoutZeroTouch, 51*time.Minute, now), now); a != GuardProactiveRefresh {
		t.Errorf("expected proactive refresh at 51min, got %s", a)
	}
}

// Age 61min fires hard timeout, confirming boundary priority.
func TestGuard_HardTimeoutAt61Minutes(t *testing.T) {
	g, _ := testGuard(&mockIntentClient{})
	now := time.Now()

	if a := g.Check(intentSnapshot(domain.LayoutZeroTouch, 61*time.Minute, now), now); a != GuardHardTimeout {
		t.Errorf("expected hard timeout at 61min, got %s", a)
	}
}

func TestGuard_StuckAwaitingInput(t *testing.T) {
	g, _ := testGuard(&mockIntentClient{})
	now := time.Now()

	s := intentSnapshot(domain.LayoutZeroTouch, 10*time.Minute, now)
	s.AwaitingInputSince = now.Add(-6 * time.Minute)

	if a := g.Check(s, now); a != GuardStuckInput {
		t.Errorf("expected stuck input at 6min awaiting, got %s", a)
	}

	s.AwaitingInputSince = now.Add(-4 * time.Minute)
	if a := g.Check(s, now); a != GuardNone {
		t.Errorf("expected no action at 4min awaiting, got %s", a)
	}
}

// Age outranks stuck input: one action per cycle, first match wins.
func TestGuard_AgeOutranksStuckInput(t *testing.T) {
	g, _ := testGuard(&mockIntentClient{})
	now := time.Now()

	s := intentSnapshot(domain.LayoutZeroTouch, 55*time.Minute, now)
	s.AwaitingInputSince = now.Add(-10 * time.Minute)

	if a := g.Check(s, now); a != GuardProactiveRefresh {
		t.Errorf("expected proactive refresh to win, got %s", a)
	}
}

// Zero-touch refresh issues exactly one cancel and one create, and the new
// intent's createdAt is approximately now.
func TestGuard_ApplyRefreshZeroTouch(t *testing.T) {
	client := &mockIntentClient{}
	g, svc := testGuard(client)
	now := time.Now()

	svc.Adopt(&domain.PaymentIntent{ID: "pi_old", CreatedAt: now.Add(-51 * time.Minute)})
	s := intentSnapshot(domain.LayoutZeroTouch, 51*time.Minute, now)

	if err := g.Apply(context.Background(), GuardProactiveRefresh, s); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	cancels, creates := client.counts()
	if cancels != 1 || creates != 1 {
		t.Errorf("expected 1 cancel + 1 create, got %d + %d", cancels, creates)
	}

	current := svc.Current()
	if current == nil {
		t.Fatal("expected a fresh intent")
	}
	if current.ID == "pi_old" {
		t.Error("expected a new intent, still holding the old one")
	}
	if age := time.Since(current.CreatedAt); age > 5*time.Second {
		t.Errorf("expected fresh createdAt, intent is %v old", age)
	}
}

// Manual layout clears without recreating; recreation is the user's call.
func TestGuard_ApplyRefreshManual(t *testing.T) {
	client := &mockIntentClient{}
	g, svc := testGuard(client)
	now := time.Now()

	svc.Adopt(&domain.PaymentIntent{ID: "pi_old", CreatedAt: now.Add(-51 * time.Minute)})
	s := intentSnapshot(domain.LayoutManual, 51*time.Minute, now)

	if err := g.Apply(context.Background(), GuardProactiveRefresh, s); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	cancels, creates := client.counts()
	if cancels != 1 || creates != 0 {
		t.Errorf("expected 1 cancel + 0 creates, got %d + %d", cancels, creates)
	}
	if svc.Current() != nil {
		t.Error("expected intent cleared")
	}
}

// Stuck input cancels only, never recreates, even for zero-touch.
func TestGuard_ApplyStuckInputCancelsOnly(t *testing.T) {
	client := &mockIntentClient{}
	g, svc := testGuard(client)

	svc.Adopt(&domain.PaymentIntent{ID: "pi_stuck", CreatedAt: time.Now().Add(-10 * time.Minute)})
	s := intentSnapshot(domain.LayoutZeroTouch, 10*time.Minute, time.Now())

	if err := g.Apply(context.Background(), GuardStuckInput, s); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	cancels, creates := client.counts()
	if cancels != 1 || creates != 0 {
		t.Errorf("expected cancel only, got %d cancels + %d creates", cancels, creates)
	}
}
