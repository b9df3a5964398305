package services

import (
	"context"
	"time"

	"eventvote/models"
)

// Store is the persistence surface the domain services depend on. The
// production implementation sits on PocketBase; tests substitute mocks.
type Store interface {
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
	GetNomineeEvent(ctx context.Context, nomineeID string) (string, error)

	GetTicketType(ctx context.Context, ticketTypeID string) (*models.TicketType, error)

	// ReserveInventory atomically decrements remaining_quantity by n,
	// refusing to go below zero. It reports whether the reservation
	// succeeded.
	ReserveInventory(ctx context.Context, ticketTypeID string, n int) (bool, error)

	// RestoreInventory returns n previously reserved units, capped at
	// total_quantity.
	RestoreInventory(ctx context.Context, ticketTypeID string, n int) error

	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, orderStatus string) error
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)

	CreateTicket(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error)
	GetTicketByCode(ctx context.Context, code string) (*models.Ticket, error)
	ListTicketsByOrder(ctx context.Context, orderID string) ([]models.Ticket, error)

	// MarkTicketUsed flips a valid ticket to used at usedAt. It reports
	// whether this call won the transition; a false return means another
	// scan got there first.
	MarkTicketUsed(ctx context.Context, code string, usedAt time.Time) (bool, error)

	CreateVote(ctx context.Context, vote *models.Vote) (*models.Vote, error)
	GetVote(ctx context.Context, voteID string) (*models.Vote, error)
	MarkVotePaid(ctx context.Context, voteID, providerRef string) error

	// CountPaidVotes is the canonical tally for one nominee: a live count
	// of PAID vote rows.
	CountPaidVotes(ctx context.Context, nomineeID string) (int64, error)
	TallyByEvent(ctx context.Context, eventID string) ([]models.NomineeTally, error)

	FindTransactionByProviderRef(ctx context.Context, providerRef string) (*models.Transaction, error)
	RecordTransaction(ctx context.Context, tran *models.Transaction) (*models.Transaction, error)
}
