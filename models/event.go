package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Event struct {
	ID           string          `db:"id" json:"id"`
	OrganizerID  string          `db:"organizer" json:"organizer_id"`
	Title        string          `db:"title" json:"title"`
	Description  string          `db:"description" json:"description"`
	Location     string          `db:"location" json:"location"`
	StartAt      time.Time       `json:"start_at"`
	EndAt        time.Time       `json:"end_at"`
	BannerURL    string          `db:"banner_url" json:"banner_url"`
	PricePerVote decimal.Decimal `json:"price_per_vote"`
	GateCodeHash string          `db:"gate_code_hash" json:"-"`
	Active       bool            `db:"active" json:"active"`
}

type Category struct {
	ID      string `db:"id" json:"id"`
	EventID string `db:"event" json:"event_id"`
	Name    string `db:"name" json:"name"`
}

type Nominee struct {
	ID         string `db:"id" json:"id"`
	CategoryID string `db:"category" json:"category_id"`
	Name       string `db:"name" json:"name"`
	PhotoURL   string `db:"photo_url" json:"photo_url"`
	Bio        string `db:"bio" json:"bio,omitempty"`
}

// NomineeTally is one row of an event's vote results, counted live from
// PAID vote rows.
type NomineeTally struct {
	CategoryID   string `db:"category_id" json:"category_id"`
	CategoryName string `db:"category_name" json:"category_name"`
	NomineeID    string `db:"nominee_id" json:"nominee_id"`
	NomineeName  string `db:"nominee_name" json:"nominee_name"`
	Votes        int64  `db:"votes" json:"votes"`
}
