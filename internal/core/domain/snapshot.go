package domain

import "time"

// Flag is a tri-state boolean for signals read across a process boundary.
// The zero value is FlagUnknown so an unreadable field can never be mistaken
// for a healthy one.
type Flag uint8

const (
	FlagUnknown Flag = iota
	FlagFalse
	FlagTrue
)

// FlagOf converts a readable boolean into a Flag.
func FlagOf(b bool) Flag {
	if b {
		return FlagTrue
	}
	return FlagFalse
}

// IsTrue reports whether the signal was readable and true. Unknown is not true.
func (f Flag) IsTrue() bool { return f == FlagTrue }

// IsFalse reports whether the signal was readable and false. Unknown is not false.
func (f Flag) IsFalse() bool { return f == FlagFalse }

func (f Flag) String() string {
	switch f {
	case FlagTrue:
		return "true"
	case FlagFalse:
		return "false"
	default:
		return "unknown"
	}
}

// ConnState is the reader's transport-level connection state.
type ConnState string

const (
	ConnUnknown      ConnState = ""
	ConnNotConnected ConnState = "not_connected"
	ConnConnecting   ConnState = "connecting"
	ConnConnected    ConnState = "connected"
)

// Readiness is the reader's payment-collection sub-state.
type Readiness string

const (
	ReadinessUnknown       Readiness = ""
	ReadinessReady         Readiness = "ready"
	ReadinessAwaitingInput Readiness = "awaiting_input"
	ReadinessProcessing    Readiness = "processing"
	ReadinessBusy          Readiness = "busy"
)

// LayoutKind distinguishes operator-driven terminals from zero-touch
// tap-to-pay terminals that continuously await a card presentation.
type LayoutKind string

const (
	LayoutManual    LayoutKind = "manual"
	LayoutZeroTouch LayoutKind = "zero_touch"
)

// DisconnectReason is the reader SDK's reported cause for the last disconnect.
type DisconnectReason string

const (
	DisconnectNone           DisconnectReason = ""
	DisconnectSecurityReboot DisconnectReason = "security_reboot"
	DisconnectPoweredOff     DisconnectReason = "powered_off"
	DisconnectBluetooth      DisconnectReason = "bluetooth_lost"
	DisconnectUnknown        DisconnectReason = "unknown"
)

// HealthSnapshot is a point-in-time view of reader, connectivity and
// transaction state. It is assembled fresh each cycle and never mutated.
type HealthSnapshot struct {
	TakenAt time.Time `json:"taken_at"`

	ConnectionState ConnState `json:"connection_state"`
	Readiness       Readiness `json:"readiness"`
	ReaderOnline    Flag      `json:"reader_online"`
	NetworkOnline   Flag      `json:"network_online"`
	OfflineMode     Flag      `json:"offline_mode"`

	Layout           LayoutKind `json:"layout"`
	InPaymentSession bool       `json:"in_payment_session"`

	IntentID           string    `json:"intent_id,omitempty"`
	IntentCreatedAt    time.Time `json:"intent_created_at,omitempty"`
	AwaitingInputSince time.Time `json:"awaiting_input_since,omitempty"`

	LastDisconnectReason DisconnectReason `json:"last_disconnect_reason,omitempty"`
	LastDisconnectAt     time.Time        `json:"last_disconnect_at,omitempty"`

	SoftwareUpdateInProgress Flag `json:"software_update_in_progress"`
}

// HasIntent reports whether the snapshot carries an active payment intent.
func (s HealthSnapshot) HasIntent() bool {
	return s.IntentID != "" && !s.IntentCreatedAt.IsZero()
}

// IntentAge returns how long the active intent has existed at now.
func (s HealthSnapshot) IntentAge(now time.Time) time.Duration {
	if !s.HasIntent() {
		return 0
	}
	return now.Sub(s.IntentCreatedAt)
}
