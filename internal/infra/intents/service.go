package intents

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/core/domain"
)

// Service owns the current payment intent. Every cancel/recreate path in the
// engine (lifecycle guard, recovery executor, network-blip fast path) goes
// through here, and the mutex serializes them per transaction so overlapping
// triggers cannot double-cancel or double-create.
type Service struct {
	client   Client
	defaults domain.IntentParams
	log      *slog.Logger

	mu      sync.Mutex
	current *domain.PaymentIntent
}

// NewService creates an intent service with the configured zero-touch defaults.
func NewService(client Client, defaults domain.IntentParams, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{client: client, defaults: defaults, log: log}
}

// Current returns a copy of the active intent, or nil when there is none.
func (s *Service) Current() *domain.PaymentIntent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// Adopt records an intent created elsewhere (the UI flow) as the active one.
func (s *Service) Adopt(intent *domain.PaymentIntent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = intent
}

// MarkAwaitingInput stamps the time the intent entered the awaiting-input
// sub-state, for stuck-input detection.
func (s *Service) MarkAwaitingInput(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.AwaitingInputSince.IsZero() {
		s.current.AwaitingInputSince = at
	}
}

// Cancel voids the active intent and clears it. No-op when nothing is active.
func (s *Service) Cancel(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelLocked(ctx)
}

// Recreate cancels the active intent, if any, and creates a fresh one with
// the given offline preference. Serialized with every other intent mutation.
func (s *Service) Recreate(ctx context.Context, offlinePreferred bool) (*domain.PaymentIntent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cancelLocked(ctx); err != nil {
		// A failed cancel does not block recreation; the server expires the
		// orphaned intent on its own timeline.
		s.log.Warn("cancel before recreate failed", "error", err)
	}

	params := s.defaults
	params.OfflinePreferred = offlinePreferred
	params.AutoCollect = true

	intent, err := s.client.CreateIntent(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create intent: %w", err)
	}
	s.current = intent
	return intent, nil
}

func (s *Service) cancelLocked(ctx context.Context) error {
	if s.current == nil {
		return nil
	}
	id := s.current.ID

	if err := s.client.CancelCollection(ctx, id); err != nil {
		s.log.Debug("cancel collection failed", "intent", id, "error", err)
	}
	err := s.client.CancelIntent(ctx, id)
	s.current = nil
	if err != nil {
		return fmt.Errorf("failed to cancel intent %s: %w", id, err)
	}
	return nil
}
