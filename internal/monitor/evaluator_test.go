package monitor

import (
	"testing"

	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/core/domain"
)

func healthySnapshot(layout domain.LayoutKind) domain.HealthSnapshot {
	readiness := domain.ReadinessAwaitingInput
	if layout == domain.LayoutManual {
		readiness = domain.ReadinessReady
	}
	return domain.HealthSnapshot{
		ConnectionState: domain.ConnConnected,
		Readiness:       readiness,
		ReaderOnline:    domain.FlagTrue,
		NetworkOnline:   domain.FlagTrue,
		OfflineMode:     domain.FlagFalse,
		Layout:          layout,
	}
}

func TestEvaluate_Healthy(t *testing.T) {
	for _, layout := range []domain.LayoutKind{domain.LayoutManual, domain.LayoutZeroTouch} {
		if got := Evaluate(healthySnapshot(layout)); got != domain.RecoveryNone {
			t.Errorf("%s: expected None, got %s", layout, got)
		}
	}
}

func TestEvaluate_SDKOffline(t *testing.T) {
	s := healthySnapshot(domain.LayoutZeroTouch)
	s.NetworkOnline = domain.FlagFalse

	if got := Evaluate(s); got != domain.RecoverySDKOffline {
		t.Errorf("expected SdkOffline, got %s", got)
	}
}

// Offline mode makes a dark network expected: never SdkOffline.
func TestEvaluate_SDKOfflineButOfflineMode(t *testing.T) {
	for _, layout := range []domain.LayoutKind{domain.LayoutManual, domain.LayoutZeroTouch} {
		s := healthySnapshot(layout)
		s.NetworkOnline = domain.FlagFalse
		s.OfflineMode = domain.FlagTrue

		if got := Evaluate(s); got != domain.RecoveryNone {
			t.Errorf("%s: expected None, got %s", layout, got)
		}
	}
}

func TestEvaluate_ReaderDisconnected(t *testing.T) {
	for _, conn := range []domain.ConnState{domain.ConnNotConnected, domain.ConnConnecting, domain.ConnUnknown} {
		s := healthySnapshot(domain.LayoutManual)
		s.ConnectionState = conn

		if got := Evaluate(s); got != domain.RecoveryReaderDisconnected {
			t.Errorf("conn=%q: expected ReaderDisconnected, got %s", conn, got)
		}
	}
}

// A reader that self-reports offline while offline mode is on is healthy
// regardless of host connectivity. This is the costly misclassification the
// rule order exists to prevent.
func TestEvaluate_ReaderOfflineInOfflineMode(t *testing.T) {
	for _, network := range []domain.Flag{domain.FlagTrue, domain.FlagFalse, domain.FlagUnknown} {
		s := healthySnapshot(domain.LayoutZeroTouch)
		s.ReaderOnline = domain.FlagFalse
		s.OfflineMode = domain.FlagTrue
		s.NetworkOnline = network

		if got := Evaluate(s); got != domain.RecoveryNone {
			t.Errorf("network=%s: expected None, got %s", network, got)
		}
	}
}

func TestEvaluate_TapToPayNotWaiting(t *testing.T) {
	s := healthySnapshot(domain.LayoutZeroTouch)
	s.Readiness = domain.ReadinessReady

	if got := Evaluate(s); got != domain.RecoveryTapToPayNotWaiting {
		t.Errorf("expected TapToPayNotWaiting, got %s", got)
	}
}

func TestEvaluate_ReaderNotReady(t *testing.T) {
	s := healthySnapshot(domain.LayoutManual)
	s.Readiness = domain.ReadinessBusy

	if got := Evaluate(s); got != domain.RecoveryReaderNotReady {
		t.Errorf("expected ReaderNotReady, got %s", got)
	}

	// awaiting_input is an acceptable manual-layout state too
	s.Readiness = domain.ReadinessAwaitingInput
	if got := Evaluate(s); got != domain.RecoveryNone {
		t.Errorf("expected None for awaiting_input, got %s", got)
	}
}

// Unknown signals must never read as healthy.
func TestEvaluate_UnknownIsUnhealthy(t *testing.T) {
	s := healthySnapshot(domain.LayoutManual)
	s.NetworkOnline = domain.FlagUnknown

	if got := Evaluate(s); got != domain.RecoverySDKOffline {
		t.Errorf("unknown network: expected SdkOffline, got %s", got)
	}

	s = healthySnapshot(domain.LayoutManual)
	s.Readiness = domain.ReadinessUnknown
	if got := Evaluate(s); got != domain.RecoveryReaderNotReady {
		t.Errorf("unknown readiness: expected ReaderNotReady, got %s", got)
	}
}

// The rule order is a tested constant: network classification outranks reader
// state, reader connection outranks readiness.
func TestEvaluate_PriorityOrder(t *testing.T) {
	s := healthySnapshot(domain.LayoutZeroTouch)
	s.NetworkOnline = domain.FlagFalse
	s.ConnectionState = domain.ConnNotConnected
	s.Readiness = domain.ReadinessBusy

	if got := Evaluate(s); got != domain.RecoverySDKOffline {
		t.Errorf("expected SdkOffline to win, got %s", got)
	}

	s.NetworkOnline = domain.FlagTrue
	if got := Evaluate(s); got != domain.RecoveryReaderDisconnected {
		t.Errorf("expected ReaderDisconnected to win, got %s", got)
	}

	s.ConnectionState = domain.ConnConnected
	if got := Evaluate(s); got != domain.RecoveryTapToPayNotWaiting {
		t.Errorf("expected TapToPayNotWaiting, got %s", got)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	s := healthySnapshot(domain.LayoutZeroTouch)
	s.ConnectionState = domain.ConnConnecting

	first := Evaluate(s)
	for i := 0; i < 100; i++ {
		if got := Evaluate(s); got != first {
			t.Fatalf("evaluation not deterministic: %s then %s", first, got)
		}
	}
}
