package monitor

import (
	"time"

	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/core/domain"
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/infra/device"
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/infra/intents"
)

// Sampler assembles a fresh HealthSnapshot each cycle from the device status
// source and the intent service. Reads never block; whatever cannot be read
// comes back as an unknown variant and is folded into "unhealthy" downstream.
type Sampler struct {
	status  device.StatusSource
	intents *intents.Service
}

// NewSampler creates a sampler over the given collaborators.
func NewSampler(status device.StatusSource, svc *intents.Service) *Sampler {
	return &Sampler{status: status, intents: svc}
}

// Sample takes a point-in-time snapshot.
func (s *Sampler) Sample(now time.Time) domain.HealthSnapshot {
	reason, at := s.status.LastDisconnect()

	snap := domain.HealthSnapshot{
		TakenAt:                  now,
		ConnectionState:          s.status.ConnectionState(),
		Readiness:                s.status.Readiness(),
		ReaderOnline:             s.status.ReaderOnline(),
		NetworkOnline:            s.status.NetworkOnline(),
		OfflineMode:              s.status.OfflineModeEnabled(),
		Layout:                   s.status.Layout(),
		InPaymentSession:         s.status.InPaymentSession(),
		LastDisconnectReason:     reason,
		LastDisconnectAt:         at,
		SoftwareUpdateInProgress: s.status.SoftwareUpdateInProgress(),
	}

	if intent := s.intents.Current(); intent != nil {
		snap.IntentID = intent.ID
		snap.IntentCreatedAt = intent.CreatedAt
		snap.AwaitingInputSince = intent.AwaitingInputSince
	}

	return snap
}
