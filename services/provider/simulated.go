package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"strings"
	"time"

	pubnub "github.com/pubnub/go/v7"
	"github.com/shopspring/decimal"
)

// SimulatedConfig configures the development payment simulator.
type SimulatedConfig struct {
	SubscribeKey string
	Channel      string
}

// Simulated is a development provider. Initialize always succeeds and
// settlement notifications arrive over a PubNub channel (published by the
// test simulate-payment endpoint) instead of an HTTP webhook.
type Simulated struct {
	channel string

	pn  *pubnub.PubNub
	lis *pubnub.Listener
	ch  chan *Transaction
}

type simulatedNotice struct {
	Ref       string          `json:"ref"`
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Metadata  Metadata        `json:"metadata"`
	PaidAt    string          `json:"paid_at"`
}

// NewSimulated returns a simulated provider. With an empty subscribe key it
// still initializes transactions; notifications then only arrive through
// the HTTP webhook endpoint.
func NewSimulated(ctx context.Context, cfg *SimulatedConfig) *Simulated {
	s := &Simulated{
		channel: cfg.Channel,
		ch:      make(chan *Transaction, 16),
	}

	if cfg.SubscribeKey == "" {
		return s
	}

	pnCfg := pubnub.NewConfigWithUserId(pubnub.UserId("payment-simulator"))
	pnCfg.SubscribeKey = cfg.SubscribeKey

	s.pn = pubnub.NewPubNub(pnCfg)
	s.lis = pubnub.NewListener()
	s.pn.AddListener(s.lis)

	go s.processSubscription(ctx)

	s.pn.Subscribe().
		Channels([]string{s.channel}).
		Execute()

	return s
}

func (s *Simulated) Kind() Kind { return KindSimulated }

func (s *Simulated) InitializeTransaction(_ context.Context, req *TransactionRequest) (*TransactionInit, error) {
	return &TransactionInit{
		Reference:        req.Reference,
		AuthorizationURL: fmt.Sprintf("https://pay.example.test/checkout/%s", req.Reference),
		AccessCode:       req.Reference,
	}, nil
}

func (s *Simulated) VerifyTransaction(_ context.Context, reference string) (*Transaction, error) {
	// The simulator has no backing ledger; treat every known reference as
	// settled so development flows complete.
	return &Transaction{
		Ref:       "sim_" + reference,
		Reference: reference,
		Status:    "success",
		PaidAt:    time.Now(),
	}, nil
}

func (s *Simulated) VerifySignature(_ []byte, _ string) bool { return true }

// The simulator speaks major units end to end.
func (s *Simulated) NormalizeWebhookAmount(amount decimal.Decimal) decimal.Decimal { return amount }

// Transactions exposes settlement notifications received over PubNub.
func (s *Simulated) Transactions() <-chan *Transaction { return s.ch }

func (s *Simulated) Close(_ context.Context) error {
	if s.pn != nil {
		s.pn.UnsubscribeAll()
	}
	return nil
}

func (s *Simulated) processSubscription(ctx context.Context) {
	for {
		select {
		case st := <-s.lis.Status:
			switch st.Category {
			case pubnub.PNConnectedCategory:
				log.Println("payment simulator connected to pubnub")
			case pubnub.PNReconnectedCategory:
				log.Println("payment simulator reconnected to pubnub")
			case pubnub.PNDisconnectedCategory:
				log.Println("payment simulator disconnected from pubnub")
			default:
			}

		case message := <-s.lis.Message:
			notice, err := decodeSimulatedNotice(message.Message)
			if err != nil {
				slog.Error("payment simulator: decode notice", "error", err)
				continue
			}

			tran, err := notice.toTransaction()
			if err != nil {
				slog.Error("payment simulator: invalid notice", "error", err)
				continue
			}
			s.ch <- tran

		case <-ctx.Done():
			log.Println("payment simulator subscription closed")
			return
		}
	}
}

func decodeSimulatedNotice(raw any) (*simulatedNotice, error) {
	var notice simulatedNotice

	switch v := raw.(type) {
	case string:
		if err := json.NewDecoder(strings.NewReader(v)).Decode(&notice); err != nil {
			return nil, err
		}
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &notice); err != nil {
			return nil, err
		}
	}

	return &notice, nil
}

func (n *simulatedNotice) toTransaction() (*Transaction, error) {
	if n.Ref == "" || n.Reference == "" {
		return nil, fmt.Errorf("simulated notice missing ref or reference")
	}

	paidAt := time.Now()
	if n.PaidAt != "" {
		if ts, err := time.Parse(time.RFC3339, n.PaidAt); err == nil {
			paidAt = ts
		}
	}

	return &Transaction{
		Ref:       n.Ref,
		Reference: n.Reference,
		Status:    n.Status,
		Amount:    n.Amount,
		Currency:  n.Currency,
		Metadata:  n.Metadata,
		PaidAt:    paidAt,
	}, nil
}
