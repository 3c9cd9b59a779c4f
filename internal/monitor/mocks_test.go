package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/core/domain"
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/infra/device"
)

// =============================================================================
// Mock status source
// =============================================================================

type mockStatus struct {
	mu sync.Mutex

	conn       domain.ConnState
	readiness  domain.Readiness
	reader     domain.Flag
	network    domain.Flag
	offline    domain.Flag
	updating   domain.Flag
	discReason domain.DisconnectReason
	discAt     time.Time
	layout     domain.LayoutKind
	inSession  bool
}

func healthyStatus(layout domain.LayoutKind) *mockStatus {
	readiness := domain.ReadinessAwaitingInput
	if layout == domain.LayoutManual {
		readiness = domain.ReadinessReady
	}
	return &mockStatus{
		conn:      domain.ConnConnected,
		readiness: readiness,
		reader:    domain.FlagTrue,
		network:   domain.FlagTrue,
		offline:   domain.FlagFalse,
		updating:  domain.FlagFalse,
		layout:    layout,
		inSession: true,
	}
}

func (m *mockStatus) ConnectionState() domain.ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn
}

func (m *mockStatus) Readiness() domain.Readiness {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readiness
}

func (m *mockStatus) ReaderOnline() domain.Flag {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reader
}

func (m *mockStatus) NetworkOnline() domain.Flag {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.network
}

func (m *mockStatus) OfflineModeEnabled() domain.Flag {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offline
}

func (m *mockStatus) SoftwareUpdateInProgress() domain.Flag {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updating
}

func (m *mockStatus) LastDisconnect() (domain.DisconnectReason, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.discReason, m.discAt
}

func (m *mockStatus) Layout() domain.LayoutKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.layout
}

func (m *mockStatus) InPaymentSession() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inSession
}

func (m *mockStatus) set(fn func(*mockStatus)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m)
}

// =============================================================================
// Mock device gateway
// =============================================================================

type mockGateway struct {
	mu sync.Mutex

	bonded        string
	cancelCalls   int
	clearCalls    int
	discoverCalls int
	connectCalls  int

	failConnect   bool
	failDiscovery bool
	neverFind     bool // discovery stream stays silent until ctx expires
}

func newMockGateway() *mockGateway {
	return &mockGateway{bonded: "rdr_1"}
}

func (g *mockGateway) CancelDiscovery(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelCalls++
	return nil
}

func (g *mockGateway) ClearDiscoveredDevices() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clearCalls++
}

func (g *mockGateway) StartDiscovery(ctx context.Context, filter string) (<-chan device.DiscoveredDevice, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.discoverCalls++
	if g.failDiscovery {
		return nil, fmt.Errorf("discovery unavailable")
	}

	out := make(chan device.DiscoveredDevice, 1)
	if g.neverFind {
		go func() {
			<-ctx.Done()
			close(out)
		}()
		return out, nil
	}
	out <- device.DiscoveredDevice{ID: g.bonded}
	close(out)
	return out, nil
}

func (g *mockGateway) Connect(ctx context.Context, deviceID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.connectCalls++
	if g.failConnect {
		return fmt.Errorf("connect rejected")
	}
	return nil
}

func (g *mockGateway) BondedDeviceID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.bonded
}

// =============================================================================
// Mock intent client
// =============================================================================

type mockIntentClient struct {
	mu sync.Mutex

	cancelCollectionCalls int
	cancelIntentCalls     int
	createCalls           int
	nextID                int

	failCreate bool
	failCancel bool
}

func (c *mockIntentClient) CancelCollection(ctx context.Context, intentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelCollectionCalls++
	return nil
}

func (c *mockIntentClient) CancelIntent(ctx context.Context, intentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelIntentCalls++
	if c.failCancel {
		return fmt.Errorf("cancel rejected")
	}
	return nil
}

func (c *mockIntentClient) CreateIntent(ctx context.Context, params domain.IntentParams) (*domain.PaymentIntent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.createCalls++
	if c.failCreate {
		return nil, fmt.Errorf("create rejected")
	}
	c.nextID++
	return &domain.PaymentIntent{
		ID:               fmt.Sprintf("pi_%d", c.nextID),
		AmountMinor:      params.AmountMinor,
		Category:         params.Category,
		OfflinePreferred: params.OfflinePreferred,
		AutoCollect:      params.AutoCollect,
		CreatedAt:        time.Now(),
	}, nil
}

func (c *mockIntentClient) counts() (cancels, creates int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelIntentCalls, c.createCalls
}

// =============================================================================
// Mock connectivity feed
// =============================================================================

type mockFeed struct {
	ch chan device.ConnectivityEvent
}

func newMockFeed() *mockFeed {
	return &mockFeed{ch: make(chan device.ConnectivityEvent, 8)}
}

func (f *mockFeed) Subscribe(ctx context.Context) (<-chan device.ConnectivityEvent, error) {
	return f.ch, nil
}

func (f *mockFeed) flip(online bool) {
	f.ch <- device.ConnectivityEvent{Online: online, At: time.Now()}
}
