package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"eventvote/models"
	"eventvote/status"
)

const guardTTL = time.Hour

func newWebhookFixture() (*PaymentService, *MockStore, *MockPublisher, redismock.ClientMock) {
	store := new(MockStore)
	publisher := new(MockPublisher)
	db, redisMock := redismock.NewClientMock()

	svc := NewPaymentService(store, db, nil, publisher, nil, guardTTL, "GHS")
	return svc, store, publisher, redisMock
}

func chargeSuccessEvent() *models.WebhookEvent {
	return &models.WebhookEvent{
		Event: "charge.success",
		Data: models.WebhookData{
			ID:       "tx1",
			Amount:   decimal.NewFromFloat(1.50),
			Currency: "GHS",
			Metadata: models.WebhookMetadata{
				VoteID:      "vote1",
				OrganizerID: "org1",
			},
		},
	}
}

func TestSplit(t *testing.T) {
	cases := []struct {
		amount    string
		organizer string
		platform  string
	}{
		{"100", "80", "20"},
		{"1.5", "1.2", "0.3"},
		{"99.99", "79.99", "20"},
		{"0.01", "0.01", "0"},
		{"0", "0", "0"},
	}

	for _, tc := range cases {
		amount := decimal.RequireFromString(tc.amount)
		organizer, platform := Split(amount)

		assert.True(t, organizer.Equal(decimal.RequireFromString(tc.organizer)),
			"amount %s: organizer share %s", tc.amount, organizer)
		assert.True(t, platform.Equal(decimal.RequireFromString(tc.platform)),
			"amount %s: platform share %s", tc.amount, platform)
		// The two shares must reassemble the settled amount exactly.
		assert.True(t, organizer.Add(platform).Equal(amount),
			"amount %s: shares sum to %s", tc.amount, organizer.Add(platform))
	}
}

func TestHandleWebhook_SettlesVote(t *testing.T) {
	svc, store, publisher, redisMock := newWebhookFixture()

	redisMock.ExpectSetNX("webhook:tx:tx1", 1, guardTTL).SetVal(true)

	store.On("FindTransactionByProviderRef", mock.Anything, "tx1").Return(nil, status.ErrNotFound)
	store.On("GetVote", mock.Anything, "vote1").
		Return(&models.Vote{ID: "vote1", EventID: "event1", NomineeID: "nom1", PaymentStatus: models.VotePending}, nil)
	store.On("RecordTransaction", mock.Anything, mock.MatchedBy(func(tr *models.Transaction) bool {
		return tr.ProviderRef == "tx1" &&
			tr.OrganizerID == "org1" &&
			tr.OrganizerShare.Equal(decimal.NewFromFloat(1.20)) &&
			tr.PlatformShare.Equal(decimal.NewFromFloat(0.30))
	})).Return(&models.Transaction{ID: "tr1"}, nil)
	store.On("MarkVotePaid", mock.Anything, "vote1", "tx1").Return(nil)
	store.On("CountPaidVotes", mock.Anything, "nom1").Return(int64(8), nil)
	publisher.On("PublishVoteCount", "event1", "nom1", int64(8)).Return()

	err := svc.HandleWebhook(context.Background(), chargeSuccessEvent())

	assert.NoError(t, err)
	assert.NoError(t, redisMock.ExpectationsWereMet())
	store.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestHandleWebhook_IgnoresOtherEvents(t *testing.T) {
	svc, store, _, _ := newWebhookFixture()

	err := svc.HandleWebhook(context.Background(), &models.WebhookEvent{Event: "charge.failed"})

	assert.NoError(t, err)
	store.AssertNotCalled(t, "GetVote", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "RecordTransaction", mock.Anything, mock.Anything)
}

func TestHandleWebhook_DuplicateGuard(t *testing.T) {
	svc, store, _, redisMock := newWebhookFixture()

	redisMock.ExpectSetNX("webhook:tx:tx1", 1, guardTTL).SetVal(false)

	err := svc.HandleWebhook(context.Background(), chargeSuccessEvent())

	assert.NoError(t, err)
	assert.NoError(t, redisMock.ExpectationsWereMet())
	store.AssertNotCalled(t, "RecordTransaction", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "MarkVotePaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleWebhook_DuplicateTransactionRow(t *testing.T) {
	svc, store, _, redisMock := newWebhookFixture()

	redisMock.ExpectSetNX("webhook:tx:tx1", 1, guardTTL).SetVal(true)
	store.On("FindTransactionByProviderRef", mock.Anything, "tx1").
		Return(&models.Transaction{ID: "tr1", ProviderRef: "tx1"}, nil)

	err := svc.HandleWebhook(context.Background(), chargeSuccessEvent())

	assert.NoError(t, err)
	store.AssertNotCalled(t, "RecordTransaction", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "MarkVotePaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleWebhook_ReleasesGuardOnFailure(t *testing.T) {
	svc, store, _, redisMock := newWebhookFixture()

	redisMock.ExpectSetNX("webhook:tx:tx1", 1, guardTTL).SetVal(true)
	redisMock.ExpectDel("webhook:tx:tx1").SetVal(1)

	store.On("FindTransactionByProviderRef", mock.Anything, "tx1").Return(nil, status.ErrNotFound)
	store.On("GetVote", mock.Anything, "vote1").
		Return(&models.Vote{ID: "vote1", EventID: "event1", NomineeID: "nom1"}, nil)
	store.On("RecordTransaction", mock.Anything, mock.Anything).
		Return(nil, errors.New("db write failed"))

	err := svc.HandleWebhook(context.Background(), chargeSuccessEvent())

	assert.Error(t, err)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestHandleWebhook_MissingReferences(t *testing.T) {
	svc, _, _, _ := newWebhookFixture()

	event := chargeSuccessEvent()
	event.Data.Metadata = models.WebhookMetadata{}

	err := svc.HandleWebhook(context.Background(), event)

	assert.ErrorIs(t, err, status.ErrInvalid)
}

func TestHandleWebhook_MissingTransactionID(t *testing.T) {
	svc, _, _, _ := newWebhookFixture()

	event := chargeSuccessEvent()
	event.Data.ID = ""

	err := svc.HandleWebhook(context.Background(), event)

	assert.ErrorIs(t, err, status.ErrInvalid)
}

func TestHandleWebhook_SettlesOrder(t *testing.T) {
	svc, store, _, redisMock := newWebhookFixture()

	redisMock.ExpectSetNX("webhook:tx:tx2", 1, guardTTL).SetVal(true)

	store.On("FindTransactionByProviderRef", mock.Anything, "tx2").Return(nil, status.ErrNotFound)
	store.On("GetOrder", mock.Anything, "order1").
		Return(&models.Order{ID: "order1", EventID: "event1", Status: models.OrderPending}, nil)
	store.On("RecordTransaction", mock.Anything, mock.MatchedBy(func(tr *models.Transaction) bool {
		return tr.ProviderRef == "tx2" &&
			tr.OrderID == "order1" &&
			tr.OrganizerShare.Add(tr.PlatformShare).Equal(decimal.NewFromFloat(100))
	})).Return(&models.Transaction{ID: "tr1"}, nil)
	store.On("UpdateOrderStatus", mock.Anything, "order1", models.OrderPaid).Return(nil)

	err := svc.HandleWebhook(context.Background(), &models.WebhookEvent{
		Event: "charge.success",
		Data: models.WebhookData{
			ID:     "tx2",
			Amount: decimal.NewFromFloat(100),
			Metadata: models.WebhookMetadata{
				OrderID:     "order1",
				OrganizerID: "org1",
			},
		},
	})

	assert.NoError(t, err)
	store.AssertExpectations(t)
}
