package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TicketValid     = "valid"
	TicketUsed      = "used"
	TicketCancelled = "cancelled"
)

// TicketType is a purchasable class of admission for an event.
// RemainingQuantity is only ever mutated through the conditional decrement
// in the store, which keeps it within [0, TotalQuantity].
type TicketType struct {
	ID                string          `db:"id" json:"id"`
	EventID           string          `db:"event" json:"event_id"`
	Name              string          `db:"name" json:"name"`
	Description       string          `db:"description" json:"description"`
	Price             decimal.Decimal `json:"price"`
	TotalQuantity     int             `db:"total_quantity" json:"total_quantity"`
	RemainingQuantity int             `db:"remaining_quantity" json:"remaining_quantity"`
}

// Ticket is a single admission credential. The unique code is the QR
// payload; whoever presents it gets in. Tickets are never deleted so the
// admission audit trail survives event cleanup.
type Ticket struct {
	ID           string     `db:"id" json:"id"`
	OrderID      string     `db:"order" json:"order_id"`
	TicketTypeID string     `db:"ticket_type" json:"ticket_type_id"`
	HolderName   string     `db:"holder_name" json:"holder_name"`
	UniqueCode   string     `db:"unique_code" json:"unique_code"`
	Status       string     `db:"status" json:"status"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
}

// CheckInResult is returned for a successful, fresh admission.
type CheckInResult struct {
	TicketID     string    `json:"ticket_id"`
	TicketTypeID string    `json:"ticket_type_id"`
	HolderName   string    `json:"holder_name"`
	UsedAt       time.Time `json:"used_at"`
}
