package provider

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies a payment provider implementation.
type Kind string

const (
	KindPaystack  Kind = "paystack"
	KindSimulated Kind = "simulated"
)

// Metadata travels with a provider transaction and comes back on the
// webhook, linking the payment to the vote or order it settles.
type Metadata struct {
	VoteID      string `json:"vote_id,omitempty"`
	OrderID     string `json:"order_id,omitempty"`
	OrganizerID string `json:"organizer_id,omitempty"`
}

// TransactionRequest initializes a checkout with the provider.
type TransactionRequest struct {
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Email     string          `json:"email"`
	Metadata  Metadata        `json:"metadata"`
}

// TransactionInit is the provider's answer to an initialize call.
type TransactionInit struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
}

// Transaction is a settled (or failed) provider transaction.
type Transaction struct {
	Ref       string          `json:"ref"`
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Metadata  Metadata        `json:"metadata"`
	PaidAt    time.Time       `json:"paid_at"`
}

// Provider is the common interface for payment providers.
type Provider interface {
	// Kind returns the provider implementation type.
	Kind() Kind

	// InitializeTransaction starts a checkout and returns where to send
	// the payer.
	InitializeTransaction(ctx context.Context, req *TransactionRequest) (*TransactionInit, error)

	// VerifyTransaction fetches the current state of a transaction by its
	// merchant reference.
	VerifyTransaction(ctx context.Context, reference string) (*Transaction, error)

	// VerifySignature reports whether a webhook body matches its signature
	// header. Providers without a configured secret accept everything.
	VerifySignature(body []byte, signature string) bool

	// NormalizeWebhookAmount converts a webhook-delivered amount into
	// major currency units. Providers that already notify in major units
	// return the amount unchanged.
	NormalizeWebhookAmount(amount decimal.Decimal) decimal.Decimal

	// Close gracefully closes any connections.
	Close(ctx context.Context) error
}
