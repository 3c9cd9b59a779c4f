// Package device defines the boundary to the card-reader SDK and transport
// bridge. The engine consumes discrete status signals and emits discrete
// remediation commands; it never talks to hardware directly.
package device

import (
	"context"
	"time"

	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/core/domain"
)

// StatusSource exposes point-in-time reads of reader and connectivity state.
// Implementations must never block; a field that cannot be read right now is
// reported as its unknown variant.
type StatusSource interface {
	ConnectionState() domain.ConnState
	Readiness() domain.Readiness
	ReaderOnline() domain.Flag
	NetworkOnline() domain.Flag
	OfflineModeEnabled() domain.Flag
	SoftwareUpdateInProgress() domain.Flag
	LastDisconnect() (domain.DisconnectReason, time.Time)
	Layout() domain.LayoutKind
	InPaymentSession() bool
}

// DiscoveredDevice is one reader seen during discovery.
type DiscoveredDevice struct {
	ID     string
	Serial string
}

// Gateway issues remediation commands to the reader SDK. All calls are
// asynchronous I/O at the SDK boundary; callers bound them with a context.
type Gateway interface {
	// CancelDiscovery aborts any in-flight discovery. Idempotent.
	CancelDiscovery(ctx context.Context) error

	// ClearDiscoveredDevices drops the cached discovered-device list.
	ClearDiscoveredDevices()

	// StartDiscovery begins scanning for readers matching the filter and
	// streams devices as they are seen. The stream closes when discovery
	// ends or the context is done.
	StartDiscovery(ctx context.Context, filter string) (<-chan DiscoveredDevice, error)

	// Connect binds to a discovered reader.
	Connect(ctx context.Context, deviceID string) error

	// BondedDeviceID returns the reader this terminal was last paired with,
	// or "" if none.
	BondedDeviceID() string
}

// ConnectivityEvent is one online/offline transition reported by the SDK.
type ConnectivityEvent struct {
	Online bool
	At     time.Time
}

// ConnectivityFeed delivers connectivity transitions as they happen, outside
// the polling cadence.
type ConnectivityFeed interface {
	// Subscribe returns a channel of transitions. The channel closes when the
	// context is done.
	Subscribe(ctx context.Context) (<-chan ConnectivityEvent, error)
}
