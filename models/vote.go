package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	VotePending = "PENDING"
	VotePaid    = "PAID"
)

// Vote is an append-only record of a cast vote. Multiple paid votes per
// voter are allowed; rows are never deleted.
type Vote struct {
	ID            string          `db:"id" json:"id"`
	EventID       string          `db:"event" json:"event_id"`
	NomineeID     string          `db:"nominee" json:"nominee_id"`
	VoterID       string          `db:"voter" json:"voter_id,omitempty"`
	PaymentStatus string          `db:"payment_status" json:"payment_status"`
	Amount        decimal.Decimal `json:"amount"`
	ProviderRef   string          `db:"provider_ref" json:"provider_ref,omitempty"`
	Created       time.Time       `json:"created"`
}
