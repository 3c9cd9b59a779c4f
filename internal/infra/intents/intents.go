// Package intents manages the terminal's single active payment intent.
package intents

import (
	"context"

	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/core/domain"
)

// Client is the external payment-API boundary.
type Client interface {
	// CancelCollection stops an in-progress card collection on the intent.
	CancelCollection(ctx context.Context, intentID string) error

	// CancelIntent voids the server-side intent.
	CancelIntent(ctx context.Context, intentID string) error

	// CreateIntent creates a new server-side intent and, when params request
	// it, immediately begins collection.
	CreateIntent(ctx context.Context, params domain.IntentParams) (*domain.PaymentIntent, error)
}
