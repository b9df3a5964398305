package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"eventvote/models"
	"eventvote/services/provider"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockStore) GetNomineeEvent(ctx context.Context, nomineeID string) (string, error) {
	args := m.Called(ctx, nomineeID)
	return args.String(0), args.Error(1)
}

func (m *MockStore) GetTicketType(ctx context.Context, ticketTypeID string) (*models.TicketType, error) {
	args := m.Called(ctx, ticketTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TicketType), args.Error(1)
}

func (m *MockStore) ReserveInventory(ctx context.Context, ticketTypeID string, n int) (bool, error) {
	args := m.Called(ctx, ticketTypeID, n)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) RestoreInventory(ctx context.Context, ticketTypeID string, n int) error {
	args := m.Called(ctx, ticketTypeID, n)
	return args.Error(0)
}

func (m *MockStore) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockStore) UpdateOrderStatus(ctx context.Context, orderID, orderStatus string) error {
	args := m.Called(ctx, orderID, orderStatus)
	return args.Error(0)
}

func (m *MockStore) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockStore) CreateTicket(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error) {
	args := m.Called(ctx, ticket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockStore) GetTicketByCode(ctx context.Context, code string) (*models.Ticket, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockStore) ListTicketsByOrder(ctx context.Context, orderID string) ([]models.Ticket, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ticket), args.Error(1)
}

func (m *MockStore) MarkTicketUsed(ctx context.Context, code string, usedAt time.Time) (bool, error) {
	args := m.Called(ctx, code, usedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) CreateVote(ctx context.Context, vote *models.Vote) (*models.Vote, error) {
	args := m.Called(ctx, vote)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vote), args.Error(1)
}

func (m *MockStore) GetVote(ctx context.Context, voteID string) (*models.Vote, error) {
	args := m.Called(ctx, voteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vote), args.Error(1)
}

func (m *MockStore) MarkVotePaid(ctx context.Context, voteID, providerRef string) error {
	args := m.Called(ctx, voteID, providerRef)
	return args.Error(0)
}

func (m *MockStore) CountPaidVotes(ctx context.Context, nomineeID string) (int64, error) {
	args := m.Called(ctx, nomineeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) TallyByEvent(ctx context.Context, eventID string) ([]models.NomineeTally, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.NomineeTally), args.Error(1)
}

func (m *MockStore) FindTransactionByProviderRef(ctx context.Context, providerRef string) (*models.Transaction, error) {
	args := m.Called(ctx, providerRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockStore) RecordTransaction(ctx context.Context, tran *models.Transaction) (*models.Transaction, error) {
	args := m.Called(ctx, tran)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishVoteCount(eventID, nomineeID string, count int64) {
	m.Called(eventID, nomineeID, count)
}

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Kind() provider.Kind { return provider.KindSimulated }

func (m *MockProvider) InitializeTransaction(ctx context.Context, req *provider.TransactionRequest) (*provider.TransactionInit, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.TransactionInit), args.Error(1)
}

func (m *MockProvider) VerifyTransaction(ctx context.Context, reference string) (*provider.Transaction, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Transaction), args.Error(1)
}

func (m *MockProvider) VerifySignature(body []byte, signature string) bool {
	args := m.Called(body, signature)
	return args.Bool(0)
}

func (m *MockProvider) NormalizeWebhookAmount(amount decimal.Decimal) decimal.Decimal {
	return amount
}

func (m *MockProvider) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
