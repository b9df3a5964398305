package models

import (
	"github.com/shopspring/decimal"
)

const (
	OrderPending = "pending"
	OrderPaid    = "paid"
	OrderFailed  = "failed"
)

type Order struct {
	ID            string          `db:"id" json:"id"`
	EventID       string          `db:"event" json:"event_id"`
	VoterID       string          `db:"voter" json:"voter_id,omitempty"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        string          `db:"status" json:"status"`
	TransactionID string          `db:"transaction_id" json:"transaction_id,omitempty"`
}

// Transaction records a reconciled provider payment and its revenue split.
// ProviderRef is unique; replaying a webhook for the same provider
// transaction finds the existing row and does nothing.
type Transaction struct {
	ID             string          `db:"id" json:"id"`
	ProviderRef    string          `db:"provider_ref" json:"provider_ref"`
	VoteID         string          `db:"vote" json:"vote_id,omitempty"`
	OrderID        string          `db:"order" json:"order_id,omitempty"`
	EventID        string          `db:"event" json:"event_id"`
	OrganizerID    string          `db:"organizer" json:"organizer_id"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	OrganizerShare decimal.Decimal `json:"organizer_share"`
	PlatformShare  decimal.Decimal `json:"platform_share"`
	Currency       string          `db:"currency" json:"currency"`
}

// WebhookEvent is the payment provider's notification payload.
type WebhookEvent struct {
	Event string      `json:"event"`
	Data  WebhookData `json:"data"`
}

type WebhookData struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Metadata WebhookMetadata `json:"metadata"`
}

type WebhookMetadata struct {
	VoteID      string `json:"vote_id,omitempty"`
	OrderID     string `json:"order_id,omitempty"`
	OrganizerID string `json:"organizer_id,omitempty"`
}
