package domain

import "time"

// PaymentIntent is the local view of a server-side authorized-but-uncaptured
// amount with a bounded validity window.
type PaymentIntent struct {
	ID                 string    `json:"id"`
	AmountMinor        int64     `json:"amount_minor"`
	Category           string    `json:"category"`
	OfflinePreferred   bool      `json:"offline_preferred"`
	AutoCollect        bool      `json:"auto_collect"`
	CreatedAt          time.Time `json:"created_at"`
	AwaitingInputSince time.Time `json:"awaiting_input_since,omitempty"`
}

// IntentParams are the inputs for creating a payment intent.
type IntentParams struct {
	AmountMinor      int64  `json:"amount_minor"`
	Category         string `json:"category"`
	OfflinePreferred bool   `json:"offline_preferred"`
	AutoCollect      bool   `json:"auto_collect"`
}
