package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"eventvote/models"
	"eventvote/monitoring"
	"eventvote/services/provider"
	"eventvote/status"
	"eventvote/utils"
)

const chargeSuccess = "charge.success"

// newProviderBreaker trips faster than the breaker defaults: checkout
// calls are user-facing, so a struggling provider should be cut off
// after tens of requests, not hundreds.
func newProviderBreaker(name string) *utils.CircuitBreaker {
	return utils.NewCircuitBreakerWithConfig(name, utils.CircuitBreakerConfig{
		MaxRequests:  10,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
	})
}

// organizerShareRate is the organizer's cut of every settled payment; the
// platform keeps the remainder.
var organizerShareRate = decimal.NewFromFloat(0.80)

// Split divides a settled amount between the organizer and the platform.
// The organizer share is rounded to cents and the platform gets the exact
// remainder, so the two always sum back to the input.
func Split(amount decimal.Decimal) (organizer, platform decimal.Decimal) {
	organizer = amount.Mul(organizerShareRate).Round(2)
	platform = amount.Sub(organizer)
	return organizer, platform
}

type PaymentService struct {
	store     Store
	redis     *redis.Client
	provider  provider.Provider
	publisher VotePublisher
	breaker   *utils.CircuitBreaker
	monitor   *monitoring.Monitor
	guardTTL  time.Duration
	currency  string
}

func NewPaymentService(
	store Store,
	redisClient *redis.Client,
	paymentProvider provider.Provider,
	publisher VotePublisher,
	monitor *monitoring.Monitor,
	guardTTL time.Duration,
	currency string,
) *PaymentService {
	return &PaymentService{
		store:     store,
		redis:     redisClient,
		provider:  paymentProvider,
		publisher: publisher,
		breaker:   newProviderBreaker("order-checkout"),
		monitor:   monitor,
		guardTTL:  guardTTL,
		currency:  currency,
	}
}

// HandleWebhook reconciles a provider notification. Only charge.success is
// acted on; everything else is acknowledged and dropped. Replays of the
// same provider transaction are absorbed twice over: a Redis guard keyed
// on the transaction id, and the unique index on transactions.provider_ref
// behind it.
func (s *PaymentService) HandleWebhook(ctx context.Context, event *models.WebhookEvent) error {
	if event.Event != chargeSuccess {
		s.monitor.TrackWebhook(event.Event, "ignored")
		return nil
	}

	data := event.Data
	if data.ID == "" {
		s.monitor.TrackWebhook(chargeSuccess, "invalid")
		return fmt.Errorf("%w: missing transaction id", status.ErrInvalid)
	}
	if data.Metadata.VoteID == "" && data.Metadata.OrderID == "" {
		s.monitor.TrackWebhook(chargeSuccess, "invalid")
		return fmt.Errorf("%w: missing vote or order reference", status.ErrInvalid)
	}

	guardKey := "webhook:tx:" + data.ID
	acquired, err := s.redis.SetNX(ctx, guardKey, 1, s.guardTTL).Result()
	if err != nil {
		// Guard down: let the unique provider_ref index catch replays.
		slog.Error("Webhook idempotency guard unavailable", "error", err, "transaction_id", data.ID)
		acquired = true
	}
	if !acquired {
		s.monitor.TrackWebhook(chargeSuccess, "duplicate")
		return nil
	}

	if _, err := s.store.FindTransactionByProviderRef(ctx, data.ID); err == nil {
		s.monitor.TrackWebhook(chargeSuccess, "duplicate")
		return nil
	} else if !errors.Is(err, status.ErrNotFound) {
		s.releaseGuard(ctx, guardKey)
		return err
	}

	if data.Metadata.VoteID != "" {
		err = s.settleVote(ctx, &data)
	} else {
		err = s.settleOrder(ctx, &data)
	}
	if err != nil {
		// Release the guard so the provider's retry can land.
		s.releaseGuard(ctx, guardKey)
		s.monitor.TrackWebhook(chargeSuccess, "failed")
		return err
	}

	s.monitor.TrackWebhook(chargeSuccess, "processed")
	return nil
}

func (s *PaymentService) settleVote(ctx context.Context, data *models.WebhookData) error {
	vote, err := s.store.GetVote(ctx, data.Metadata.VoteID)
	if err != nil {
		return err
	}

	organizer, platform := Split(data.Amount)
	if _, err := s.store.RecordTransaction(ctx, &models.Transaction{
		ProviderRef:    data.ID,
		VoteID:         vote.ID,
		EventID:        vote.EventID,
		OrganizerID:    data.Metadata.OrganizerID,
		TotalAmount:    data.Amount,
		OrganizerShare: organizer,
		PlatformShare:  platform,
		Currency:       s.currencyOr(data.Currency),
	}); err != nil {
		return err
	}

	if err := s.store.MarkVotePaid(ctx, vote.ID, data.ID); err != nil {
		return err
	}

	count, err := s.store.CountPaidVotes(ctx, vote.NomineeID)
	if err != nil {
		slog.Error("Failed to count votes after settlement", "error", err, "vote_id", vote.ID)
		return nil
	}
	s.publisher.PublishVoteCount(vote.EventID, vote.NomineeID, count)

	return nil
}

func (s *PaymentService) settleOrder(ctx context.Context, data *models.WebhookData) error {
	order, err := s.store.GetOrder(ctx, data.Metadata.OrderID)
	if err != nil {
		return err
	}

	organizer, platform := Split(data.Amount)
	if _, err := s.store.RecordTransaction(ctx, &models.Transaction{
		ProviderRef:    data.ID,
		OrderID:        order.ID,
		EventID:        order.EventID,
		OrganizerID:    data.Metadata.OrganizerID,
		TotalAmount:    data.Amount,
		OrganizerShare: organizer,
		PlatformShare:  platform,
		Currency:       s.currencyOr(data.Currency),
	}); err != nil {
		return err
	}

	return s.store.UpdateOrderStatus(ctx, order.ID, models.OrderPaid)
}

// HandleSettlement adapts a provider-side settlement notification (the
// simulated provider's PubNub channel) into the webhook flow.
func (s *PaymentService) HandleSettlement(ctx context.Context, tran *provider.Transaction) error {
	eventName := chargeSuccess
	if tran.Status != "success" {
		eventName = "charge.failed"
	}

	return s.HandleWebhook(ctx, &models.WebhookEvent{
		Event: eventName,
		Data: models.WebhookData{
			ID:       tran.Ref,
			Amount:   tran.Amount,
			Currency: tran.Currency,
			Metadata: models.WebhookMetadata{
				VoteID:      tran.Metadata.VoteID,
				OrderID:     tran.Metadata.OrderID,
				OrganizerID: tran.Metadata.OrganizerID,
			},
		},
	})
}

// InitializeOrderPayment starts provider checkout for a pending ticket
// order.
func (s *PaymentService) InitializeOrderPayment(ctx context.Context, orderID, email string) (*provider.TransactionInit, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderPending {
		return nil, fmt.Errorf("%w: order is %s", status.ErrConflict, order.Status)
	}

	event, err := s.store.GetEvent(ctx, order.EventID)
	if err != nil {
		return nil, err
	}

	result, err := s.breaker.Execute(ctx, func() (interface{}, error) {
		return s.provider.InitializeTransaction(ctx, &provider.TransactionRequest{
			Reference: order.ID,
			Amount:    order.TotalAmount,
			Currency:  s.currency,
			Email:     email,
			Metadata: provider.Metadata{
				OrderID:     order.ID,
				OrganizerID: event.OrganizerID,
			},
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: initialize payment: %v", status.ErrUpstream, err)
	}

	return result.(*provider.TransactionInit), nil
}

func (s *PaymentService) releaseGuard(ctx context.Context, key string) {
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		slog.Error("Failed to release webhook guard", "error", err, "key", key)
	}
}

func (s *PaymentService) currencyOr(currency string) string {
	if currency != "" {
		return currency
	}
	return s.currency
}
