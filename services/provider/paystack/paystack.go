package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"eventvote/services/provider"
)

type Config struct {
	BaseURL       string `json:"baseUrl" mapstructure:"base_url"`
	SecretKey     string `json:"secretKey" mapstructure:"secret_key"`
	WebhookSecret string `json:"webhookSecret" mapstructure:"webhook_secret"`
}

// Paystack implements provider.Provider against the Paystack REST API.
// Amounts cross the wire in the currency's minor unit.
type Paystack struct {
	webhookSecret string
	client        *Client
}

var minorUnit = decimal.NewFromInt(100)

// New returns a Paystack provider instance.
func New(ctx context.Context, cfg *Config) (*Paystack, error) {
	client := newClient(ctx, &ClientConfig{
		BaseURL:   cfg.BaseURL,
		SecretKey: cfg.SecretKey,
	})

	return &Paystack{
		webhookSecret: cfg.WebhookSecret,
		client:        client,
	}, nil
}

func (p *Paystack) Kind() provider.Kind { return provider.KindPaystack }

type initializeRequest struct {
	Reference string            `json:"reference"`
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	Email     string            `json:"email"`
	Metadata  provider.Metadata `json:"metadata"`
}

type initializeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

func (p *Paystack) InitializeTransaction(ctx context.Context, req *provider.TransactionRequest) (*provider.TransactionInit, error) {
	body := initializeRequest{
		Reference: req.Reference,
		Amount:    req.Amount.Mul(minorUnit).IntPart(),
		Currency:  req.Currency,
		Email:     req.Email,
		Metadata:  req.Metadata,
	}

	var data initializeResponse
	if err := p.client.call(ctx, http.MethodPost, "/transaction/initialize", body, &data); err != nil {
		return nil, err
	}

	return &provider.TransactionInit{
		Reference:        data.Reference,
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
	}, nil
}

type verifyResponse struct {
	ID        json.Number       `json:"id"`
	Reference string            `json:"reference"`
	Status    string            `json:"status"`
	Amount    decimal.Decimal   `json:"amount"`
	Currency  string            `json:"currency"`
	Metadata  provider.Metadata `json:"metadata"`
	PaidAt    string            `json:"paid_at"`
}

func (p *Paystack) VerifyTransaction(ctx context.Context, reference string) (*provider.Transaction, error) {
	var data verifyResponse
	if err := p.client.call(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &data); err != nil {
		return nil, err
	}

	paidAt := time.Time{}
	if data.PaidAt != "" {
		if ts, err := time.Parse(time.RFC3339, data.PaidAt); err == nil {
			paidAt = ts
		}
	}

	return &provider.Transaction{
		Ref:       data.ID.String(),
		Reference: data.Reference,
		Status:    data.Status,
		Amount:    data.Amount.Div(minorUnit),
		Currency:  data.Currency,
		Metadata:  data.Metadata,
		PaidAt:    paidAt,
	}, nil
}

// VerifySignature checks the x-paystack-signature header: HMAC-SHA512 of
// the raw body keyed with the webhook secret. Without a configured secret
// every body is accepted (development mode).
func (p *Paystack) VerifySignature(body []byte, signature string) bool {
	if p.webhookSecret == "" {
		return true
	}

	mac := hmac.New(sha512.New, []byte(p.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expected))
}

// NormalizeWebhookAmount converts Paystack's minor-unit webhook amounts
// (pesewas, kobo) into major currency units.
func (p *Paystack) NormalizeWebhookAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Div(minorUnit)
}

func (p *Paystack) Close(_ context.Context) error { return nil }
