package services

import (
	"context"
	"fmt"

	"eventvote/models"
	"eventvote/monitoring"
	"eventvote/services/provider"
	"eventvote/status"
	"eventvote/utils"
)

type VoteService struct {
	store     Store
	provider  provider.Provider
	publisher VotePublisher
	breaker   *utils.CircuitBreaker
	monitor   *monitoring.Monitor
	currency  string
}

func NewVoteService(
	store Store,
	paymentProvider provider.Provider,
	publisher VotePublisher,
	monitor *monitoring.Monitor,
	currency string,
) *VoteService {
	return &VoteService{
		store:     store,
		provider:  paymentProvider,
		publisher: publisher,
		breaker:   newProviderBreaker("vote-checkout"),
		monitor:   monitor,
		currency:  currency,
	}
}

type VoteRequest struct {
	EventID   string `json:"-"`
	NomineeID string `json:"nominee_id"`
	Email     string `json:"email"`
	VoterID   string `json:"-"`
}

// VoteReceipt is the immediate answer to a cast vote. Free votes come back
// PAID with the nominee's new tally; paid votes come back PENDING with the
// provider's checkout URL.
type VoteReceipt struct {
	Vote             *models.Vote `json:"vote"`
	Count            int64        `json:"count,omitempty"`
	AuthorizationURL string       `json:"authorization_url,omitempty"`
}

// CastVote records a vote for a nominee. Events with a zero vote price
// settle immediately; priced events create a PENDING vote that the payment
// webhook flips to PAID once the charge settles.
func (s *VoteService) CastVote(ctx context.Context, req *VoteRequest) (*VoteReceipt, error) {
	if req.EventID == "" || req.NomineeID == "" {
		return nil, fmt.Errorf("%w: event and nominee are required", status.ErrInvalid)
	}

	event, err := s.store.GetEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if !event.Active {
		return nil, fmt.Errorf("%w: voting is closed for this event", status.ErrConflict)
	}

	nomineeEvent, err := s.store.GetNomineeEvent(ctx, req.NomineeID)
	if err != nil {
		return nil, err
	}
	if nomineeEvent != event.ID {
		return nil, fmt.Errorf("%w: nominee does not belong to this event", status.ErrInvalid)
	}

	if event.PricePerVote.IsZero() {
		return s.castFreeVote(ctx, event, req)
	}
	return s.castPaidVote(ctx, event, req)
}

func (s *VoteService) castFreeVote(ctx context.Context, event *models.Event, req *VoteRequest) (*VoteReceipt, error) {
	vote, err := s.store.CreateVote(ctx, &models.Vote{
		EventID:       event.ID,
		NomineeID:     req.NomineeID,
		VoterID:       req.VoterID,
		PaymentStatus: models.VotePaid,
	})
	if err != nil {
		return nil, err
	}

	count, err := s.store.CountPaidVotes(ctx, req.NomineeID)
	if err != nil {
		return nil, err
	}

	s.publisher.PublishVoteCount(event.ID, req.NomineeID, count)
	s.monitor.TrackVote(event.ID, models.VotePaid)

	return &VoteReceipt{Vote: vote, Count: count}, nil
}

func (s *VoteService) castPaidVote(ctx context.Context, event *models.Event, req *VoteRequest) (*VoteReceipt, error) {
	vote, err := s.store.CreateVote(ctx, &models.Vote{
		EventID:       event.ID,
		NomineeID:     req.NomineeID,
		VoterID:       req.VoterID,
		PaymentStatus: models.VotePending,
		Amount:        event.PricePerVote,
	})
	if err != nil {
		return nil, err
	}

	result, err := s.breaker.Execute(ctx, func() (interface{}, error) {
		return s.provider.InitializeTransaction(ctx, &provider.TransactionRequest{
			Reference: vote.ID,
			Amount:    event.PricePerVote,
			Currency:  s.currency,
			Email:     req.Email,
			Metadata: provider.Metadata{
				VoteID:      vote.ID,
				OrganizerID: event.OrganizerID,
			},
		})
	})
	if err != nil {
		// The PENDING vote stays; it never counts until the webhook
		// settles it, and the voter can retry.
		return nil, fmt.Errorf("%w: initialize payment: %v", status.ErrUpstream, err)
	}

	init := result.(*provider.TransactionInit)

	s.monitor.TrackVote(event.ID, models.VotePending)

	return &VoteReceipt{Vote: vote, AuthorizationURL: init.AuthorizationURL}, nil
}

// Results returns the live per-nominee tally for an event, counting only
// PAID votes.
func (s *VoteService) Results(ctx context.Context, eventID string) ([]models.NomineeTally, error) {
	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.store.TallyByEvent(ctx, eventID)
}
