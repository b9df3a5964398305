package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"eventvote/models"
	"eventvote/monitoring"
	"eventvote/status"
	"eventvote/utils"
)

// ticket code length in random bytes; codes come out as 32 hex chars.
const ticketCodeBytes = 16

type InventoryService struct {
	store   Store
	monitor *monitoring.Monitor
}

func NewInventoryService(store Store, monitor *monitoring.Monitor) *InventoryService {
	return &InventoryService{store: store, monitor: monitor}
}

type PurchaseRequest struct {
	TicketTypeID string `json:"ticket_type_id"`
	Quantity     int    `json:"quantity"`
	HolderName   string `json:"holder_name"`
	VoterID      string `json:"-"`
}

// Purchase reserves inventory first, then issues the order and its tickets.
// The conditional decrement in the store is the only gate: once it
// succeeds the units belong to this order, and any later failure hands
// them back before the error surfaces.
func (s *InventoryService) Purchase(ctx context.Context, req *PurchaseRequest) (*models.Order, []models.Ticket, error) {
	if req.TicketTypeID == "" {
		return nil, nil, fmt.Errorf("%w: ticket_type_id is required", status.ErrInvalid)
	}
	if req.Quantity < 1 {
		return nil, nil, fmt.Errorf("%w: quantity must be at least 1", status.ErrInvalid)
	}

	ticketType, err := s.store.GetTicketType(ctx, req.TicketTypeID)
	if err != nil {
		return nil, nil, err
	}

	event, err := s.store.GetEvent(ctx, ticketType.EventID)
	if err != nil {
		return nil, nil, err
	}
	if !event.Active {
		return nil, nil, fmt.Errorf("%w: event is not active", status.ErrConflict)
	}

	ok, err := s.store.ReserveInventory(ctx, ticketType.ID, req.Quantity)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("%w: not enough tickets remaining", status.ErrConflict)
	}

	total := ticketType.Price.Mul(decimal.NewFromInt(int64(req.Quantity)))

	orderStatus := models.OrderPending
	if total.IsZero() {
		orderStatus = models.OrderPaid
	}

	order, err := s.store.CreateOrder(ctx, &models.Order{
		EventID:     ticketType.EventID,
		VoterID:     req.VoterID,
		TotalAmount: total,
		Status:      orderStatus,
	})
	if err != nil {
		s.release(ctx, ticketType.ID, req.Quantity)
		return nil, nil, err
	}

	tickets := make([]models.Ticket, 0, req.Quantity)
	for i := 0; i < req.Quantity; i++ {
		code, err := utils.GenerateCode(ticketCodeBytes)
		if err != nil {
			s.release(ctx, ticketType.ID, req.Quantity-len(tickets))
			return nil, nil, err
		}

		ticket, err := s.store.CreateTicket(ctx, &models.Ticket{
			OrderID:      order.ID,
			TicketTypeID: ticketType.ID,
			HolderName:   req.HolderName,
			UniqueCode:   code,
			Status:       models.TicketValid,
		})
		if err != nil {
			s.release(ctx, ticketType.ID, req.Quantity-len(tickets))
			return nil, nil, err
		}
		tickets = append(tickets, *ticket)
	}

	s.monitor.TrackTicketSale(ticketType.EventID, ticketType.Name, req.Quantity)

	return order, tickets, nil
}

func (s *InventoryService) release(ctx context.Context, ticketTypeID string, n int) {
	if n < 1 {
		return
	}
	if err := s.store.RestoreInventory(ctx, ticketTypeID, n); err != nil {
		slog.Error("Failed to restore reserved inventory", "error", err, "ticket_type_id", ticketTypeID, "count", n)
	}
}

func (s *InventoryService) TicketsForOrder(ctx context.Context, orderID string) ([]models.Ticket, error) {
	if _, err := s.store.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return s.store.ListTicketsByOrder(ctx, orderID)
}
