package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"eventvote/models"
	"eventvote/services/provider"
	"eventvote/status"
)

func freeVotingEvent() *models.Event {
	return &models.Event{
		ID:          "event1",
		OrganizerID: "org1",
		Title:       "Awards Night",
		Active:      true,
	}
}

func paidVotingEvent() *models.Event {
	event := freeVotingEvent()
	event.PricePerVote = decimal.NewFromFloat(1.50)
	return event
}

func TestCastVote_FreeEventSettlesImmediately(t *testing.T) {
	store := new(MockStore)
	publisher := new(MockPublisher)
	svc := NewVoteService(store, nil, publisher, nil, "GHS")

	store.On("GetEvent", mock.Anything, "event1").Return(freeVotingEvent(), nil)
	store.On("GetNomineeEvent", mock.Anything, "nom1").Return("event1", nil)
	store.On("CreateVote", mock.Anything, mock.MatchedBy(func(v *models.Vote) bool {
		return v.PaymentStatus == models.VotePaid && v.NomineeID == "nom1"
	})).Return(&models.Vote{ID: "vote1", EventID: "event1", NomineeID: "nom1", PaymentStatus: models.VotePaid}, nil)
	store.On("CountPaidVotes", mock.Anything, "nom1").Return(int64(42), nil)
	publisher.On("PublishVoteCount", "event1", "nom1", int64(42)).Return()

	receipt, err := svc.CastVote(context.Background(), &VoteRequest{
		EventID:   "event1",
		NomineeID: "nom1",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.VotePaid, receipt.Vote.PaymentStatus)
	assert.Equal(t, int64(42), receipt.Count)
	assert.Empty(t, receipt.AuthorizationURL)
	publisher.AssertExpectations(t)
}

func TestCastVote_PaidEventStartsCheckout(t *testing.T) {
	store := new(MockStore)
	publisher := new(MockPublisher)
	paymentProvider := new(MockProvider)
	svc := NewVoteService(store, paymentProvider, publisher, nil, "GHS")

	store.On("GetEvent", mock.Anything, "event1").Return(paidVotingEvent(), nil)
	store.On("GetNomineeEvent", mock.Anything, "nom1").Return("event1", nil)
	store.On("CreateVote", mock.Anything, mock.MatchedBy(func(v *models.Vote) bool {
		return v.PaymentStatus == models.VotePending &&
			v.Amount.Equal(decimal.NewFromFloat(1.50))
	})).Return(&models.Vote{ID: "vote1", EventID: "event1", NomineeID: "nom1", PaymentStatus: models.VotePending}, nil)
	paymentProvider.On("InitializeTransaction", mock.Anything, mock.MatchedBy(func(req *provider.TransactionRequest) bool {
		return req.Reference == "vote1" &&
			req.Metadata.VoteID == "vote1" &&
			req.Metadata.OrganizerID == "org1" &&
			req.Currency == "GHS"
	})).Return(&provider.TransactionInit{
		Reference:        "vote1",
		AuthorizationURL: "https://checkout.example/vote1",
	}, nil)

	receipt, err := svc.CastVote(context.Background(), &VoteRequest{
		EventID:   "event1",
		NomineeID: "nom1",
		Email:     "voter@example.com",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.VotePending, receipt.Vote.PaymentStatus)
	assert.Equal(t, "https://checkout.example/vote1", receipt.AuthorizationURL)
	// The tally never moves on a pending vote.
	store.AssertNotCalled(t, "CountPaidVotes", mock.Anything, mock.Anything)
	publisher.AssertNotCalled(t, "PublishVoteCount", mock.Anything, mock.Anything, mock.Anything)
}

func TestCastVote_ProviderDownWrapsUpstream(t *testing.T) {
	store := new(MockStore)
	paymentProvider := new(MockProvider)
	svc := NewVoteService(store, paymentProvider, new(MockPublisher), nil, "GHS")

	store.On("GetEvent", mock.Anything, "event1").Return(paidVotingEvent(), nil)
	store.On("GetNomineeEvent", mock.Anything, "nom1").Return("event1", nil)
	store.On("CreateVote", mock.Anything, mock.Anything).
		Return(&models.Vote{ID: "vote1", PaymentStatus: models.VotePending}, nil)
	paymentProvider.On("InitializeTransaction", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	_, err := svc.CastVote(context.Background(), &VoteRequest{
		EventID:   "event1",
		NomineeID: "nom1",
	})

	assert.ErrorIs(t, err, status.ErrUpstream)
}

func TestCastVote_InactiveEvent(t *testing.T) {
	store := new(MockStore)
	svc := NewVoteService(store, nil, new(MockPublisher), nil, "GHS")

	closed := freeVotingEvent()
	closed.Active = false
	store.On("GetEvent", mock.Anything, "event1").Return(closed, nil)

	_, err := svc.CastVote(context.Background(), &VoteRequest{
		EventID:   "event1",
		NomineeID: "nom1",
	})

	assert.ErrorIs(t, err, status.ErrConflict)
	store.AssertNotCalled(t, "CreateVote", mock.Anything, mock.Anything)
}

func TestCastVote_NomineeFromAnotherEvent(t *testing.T) {
	store := new(MockStore)
	svc := NewVoteService(store, nil, new(MockPublisher), nil, "GHS")

	store.On("GetEvent", mock.Anything, "event1").Return(freeVotingEvent(), nil)
	store.On("GetNomineeEvent", mock.Anything, "nom1").Return("event2", nil)

	_, err := svc.CastVote(context.Background(), &VoteRequest{
		EventID:   "event1",
		NomineeID: "nom1",
	})

	assert.ErrorIs(t, err, status.ErrInvalid)
	store.AssertNotCalled(t, "CreateVote", mock.Anything, mock.Anything)
}

func TestResults(t *testing.T) {
	store := new(MockStore)
	svc := NewVoteService(store, nil, new(MockPublisher), nil, "GHS")

	tally := []models.NomineeTally{
		{CategoryID: "cat1", CategoryName: "Best Artist", NomineeID: "nom1", NomineeName: "Kojo", Votes: 12},
		{CategoryID: "cat1", CategoryName: "Best Artist", NomineeID: "nom2", NomineeName: "Esi", Votes: 7},
	}

	store.On("GetEvent", mock.Anything, "event1").Return(freeVotingEvent(), nil)
	store.On("TallyByEvent", mock.Anything, "event1").Return(tally, nil)

	got, err := svc.Results(context.Background(), "event1")

	assert.NoError(t, err)
	assert.Equal(t, tally, got)
}

func TestResults_UnknownEvent(t *testing.T) {
	store := new(MockStore)
	svc := NewVoteService(store, nil, new(MockPublisher), nil, "GHS")

	store.On("GetEvent", mock.Anything, "nope").Return(nil, status.ErrNotFound)

	_, err := svc.Results(context.Background(), "nope")

	assert.ErrorIs(t, err, status.ErrNotFound)
	store.AssertNotCalled(t, "TallyByEvent", mock.Anything, mock.Anything)
}
