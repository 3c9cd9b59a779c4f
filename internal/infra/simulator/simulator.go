// Package simulator provides an in-memory reader, network and payment-API
// stand-in implementing every engine boundary. It backs the daemon's
// --simulate mode and the end-to-end tests; it is not a device driver.
package simulator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/core/domain"
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/infra/device"
)

// Simulator holds one simulated reader and its network environment.
type Simulator struct {
	mu sync.Mutex

	connState      domain.ConnState
	readiness      domain.Readiness
	readerOnline   bool
	networkOnline  bool
	offlineMode    bool
	updating       bool
	layout         domain.LayoutKind
	inSession      bool
	lastDiscReason domain.DisconnectReason
	lastDiscAt     time.Time

	bondedID    string
	discovered  []device.DiscoveredDevice
	discovering context.CancelFunc

	connSubs []chan device.ConnectivityEvent

	// Tunables for fault injection.
	FailConnect      bool
	FailCreateIntent bool
	ConnectDelay     time.Duration
}

// New creates a simulator with a healthy, connected, in-session reader.
func New(layout domain.LayoutKind) *Simulator {
	return &Simulator{
		connState:     domain.ConnConnected,
		readiness:     domain.ReadinessAwaitingInput,
		readerOnline:  true,
		networkOnline: true,
		layout:        layout,
		inSession:     true,
		bondedID:      "sim-reader-1",
	}
}

// ---------------------------------------------------------------------------
// StatusSource
// ---------------------------------------------------------------------------

func (s *Simulator) ConnectionState() domain.ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connState
}

func (s *Simulator) Readiness() domain.Readiness {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readiness
}

func (s *Simulator) ReaderOnline() domain.Flag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.FlagOf(s.readerOnline)
}

func (s *Simulator) NetworkOnline() domain.Flag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.FlagOf(s.networkOnline)
}

func (s *Simulator) OfflineModeEnabled() domain.Flag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.FlagOf(s.offlineMode)
}

func (s *Simulator) SoftwareUpdateInProgress() domain.Flag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.FlagOf(s.updating)
}

func (s *Simulator) LastDisconnect() (domain.DisconnectReason, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastDiscReason, s.lastDiscAt
}

func (s *Simulator) Layout() domain.LayoutKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout
}

func (s *Simulator) InPaymentSession() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inSession
}

// ---------------------------------------------------------------------------
// Gateway
// ---------------------------------------------------------------------------

func (s *Simulator) CancelDiscovery(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.discovering != nil {
		s.discovering()
		s.discovering = nil
	}
	return nil
}

func (s *Simulator) ClearDiscoveredDevices() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discovered = nil
}

func (s *Simulator) StartDiscovery(ctx context.Context, filter string) (<-chan device.DiscoveredDevice, error) {
	s.mu.Lock()
	bonded := s.bondedID
	delay := s.ConnectDelay
	dctx, cancel := context.WithCancel(ctx)
	s.discovering = cancel
	s.mu.Unlock()

	out := make(chan device.DiscoveredDevice, 1)
	go func() {
		defer close(out)
		if delay > 0 {
			select {
			case <-dctx.Done():
				return
			case <-time.After(delay):
			}
		}
		d := device.DiscoveredDevice{ID: bonded, Serial: "SIM0001"}
		s.mu.Lock()
		s.discovered = append(s.discovered, d)
		s.mu.Unlock()
		select {
		case out <- d:
		case <-dctx.Done():
		}
	}()
	return out, nil
}

func (s *Simulator) Connect(ctx context.Context, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailConnect {
		return fmt.Errorf("simulated connect rejection for %s", deviceID)
	}
	if deviceID != s.bondedID {
		return fmt.Errorf("unknown device %s", deviceID)
	}
	s.connState = domain.ConnConnected
	s.readiness = domain.ReadinessAwaitingInput
	return nil
}

func (s *Simulator) BondedDeviceID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bondedID
}

// ---------------------------------------------------------------------------
// ConnectivityFeed
// ---------------------------------------------------------------------------

func (s *Simulator) Subscribe(ctx context.Context) (<-chan device.ConnectivityEvent, error) {
	ch := make(chan device.ConnectivityEvent, 8)
	s.mu.Lock()
	s.connSubs = append(s.connSubs, ch)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		// Removal and close stay under the same lock as the notify loop in
		// SetNetworkOnline, so a flip can never send on a closed channel.
		s.mu.Lock()
		for i, sub := range s.connSubs {
			if sub == ch {
				s.connSubs = append(s.connSubs[:i], s.connSubs[i+1:]...)
				break
			}
		}
		close(ch)
		s.mu.Unlock()
	}()
	return ch, nil
}

// ---------------------------------------------------------------------------
// intents.Client
// ---------------------------------------------------------------------------

func (s *Simulator) CancelCollection(ctx context.Context, intentID string) error {
	return nil
}

func (s *Simulator) CancelIntent(ctx context.Context, intentID string) error {
	return nil
}

func (s *Simulator) CreateIntent(ctx context.Context, params domain.IntentParams) (*domain.PaymentIntent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCreateIntent {
		return nil, fmt.Errorf("simulated intent creation failure")
	}
	now := time.Now()
	intent := &domain.PaymentIntent{
		ID:               "pi_sim_" + uuid.New().String(),
		AmountMinor:      params.AmountMinor,
		Category:         params.Category,
		OfflinePreferred: params.OfflinePreferred,
		AutoCollect:      params.AutoCollect,
		CreatedAt:        now,
	}
	if params.AutoCollect {
		intent.AwaitingInputSince = now
		s.readiness = domain.ReadinessAwaitingInput
	}
	return intent, nil
}

// ---------------------------------------------------------------------------
// Fault injection
// ---------------------------------------------------------------------------

// DropReader simulates a reader disconnect with the given reason.
func (s *Simulator) DropReader(reason domain.DisconnectReason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connState = domain.ConnNotConnected
	s.readiness = domain.ReadinessUnknown
	s.lastDiscReason = reason
	s.lastDiscAt = time.Now()
}

// SetNetworkOnline flips host connectivity and notifies subscribers. The
// notify loop runs under the lock; sends are non-blocking, so a full
// subscriber drops the event rather than stalling the simulator.
func (s *Simulator) SetNetworkOnline(online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := s.networkOnline != online
	s.networkOnline = online
	if !changed {
		return
	}

	ev := device.ConnectivityEvent{Online: online, At: time.Now()}
	for _, sub := range s.connSubs {
		select {
		case sub <- ev:
		default:
		}
	}
}

// SetOfflineMode toggles deferred-settlement capture.
func (s *Simulator) SetOfflineMode(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offlineMode = enabled
}

// SetSoftwareUpdate toggles a firmware update in progress.
func (s *Simulator) SetSoftwareUpdate(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updating = active
}

// SetInSession toggles payment mode.
func (s *Simulator) SetInSession(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inSession = active
}

// SetReadiness forces the reader's collection sub-state.
func (s *Simulator) SetReadiness(r domain.Readiness) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readiness = r
}
