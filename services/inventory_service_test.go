package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"eventvote/models"
	"eventvote/status"
)

func activeEvent() *models.Event {
	return &models.Event{
		ID:          "event1",
		OrganizerID: "org1",
		Title:       "Awards Night",
		Active:      true,
	}
}

func vipTicketType() *models.TicketType {
	return &models.TicketType{
		ID:                "tt1",
		EventID:           "event1",
		Name:              "VIP",
		Price:             decimal.NewFromFloat(50),
		TotalQuantity:     100,
		RemainingQuantity: 10,
	}
}

func TestPurchase_Success(t *testing.T) {
	store := new(MockStore)
	svc := NewInventoryService(store, nil)

	store.On("GetTicketType", mock.Anything, "tt1").Return(vipTicketType(), nil)
	store.On("GetEvent", mock.Anything, "event1").Return(activeEvent(), nil)
	store.On("ReserveInventory", mock.Anything, "tt1", 2).Return(true, nil)
	store.On("CreateOrder", mock.Anything, mock.MatchedBy(func(o *models.Order) bool {
		return o.EventID == "event1" &&
			o.Status == models.OrderPending &&
			o.TotalAmount.Equal(decimal.NewFromFloat(100))
	})).Return(&models.Order{ID: "order1", EventID: "event1", Status: models.OrderPending}, nil)
	store.On("CreateTicket", mock.Anything, mock.MatchedBy(func(tk *models.Ticket) bool {
		return tk.OrderID == "order1" &&
			tk.Status == models.TicketValid &&
			len(tk.UniqueCode) == 32
	})).Return(&models.Ticket{ID: "ticket1", OrderID: "order1", Status: models.TicketValid}, nil)

	order, tickets, err := svc.Purchase(context.Background(), &PurchaseRequest{
		TicketTypeID: "tt1",
		Quantity:     2,
		HolderName:   "Ama",
	})

	assert.NoError(t, err)
	assert.Equal(t, "order1", order.ID)
	assert.Len(t, tickets, 2)
	store.AssertNumberOfCalls(t, "CreateTicket", 2)
	store.AssertNotCalled(t, "RestoreInventory", mock.Anything, mock.Anything, mock.Anything)
}

func TestPurchase_FreeTicketsSettleImmediately(t *testing.T) {
	store := new(MockStore)
	svc := NewInventoryService(store, nil)

	free := vipTicketType()
	free.Price = decimal.Zero

	store.On("GetTicketType", mock.Anything, "tt1").Return(free, nil)
	store.On("GetEvent", mock.Anything, "event1").Return(activeEvent(), nil)
	store.On("ReserveInventory", mock.Anything, "tt1", 1).Return(true, nil)
	store.On("CreateOrder", mock.Anything, mock.MatchedBy(func(o *models.Order) bool {
		return o.Status == models.OrderPaid && o.TotalAmount.IsZero()
	})).Return(&models.Order{ID: "order1", Status: models.OrderPaid}, nil)
	store.On("CreateTicket", mock.Anything, mock.Anything).
		Return(&models.Ticket{ID: "ticket1", OrderID: "order1"}, nil)

	order, _, err := svc.Purchase(context.Background(), &PurchaseRequest{
		TicketTypeID: "tt1",
		Quantity:     1,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.OrderPaid, order.Status)
}

func TestPurchase_SoldOut(t *testing.T) {
	store := new(MockStore)
	svc := NewInventoryService(store, nil)

	store.On("GetTicketType", mock.Anything, "tt1").Return(vipTicketType(), nil)
	store.On("GetEvent", mock.Anything, "event1").Return(activeEvent(), nil)
	store.On("ReserveInventory", mock.Anything, "tt1", 20).Return(false, nil)

	_, _, err := svc.Purchase(context.Background(), &PurchaseRequest{
		TicketTypeID: "tt1",
		Quantity:     20,
	})

	assert.ErrorIs(t, err, status.ErrConflict)
	store.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "CreateTicket", mock.Anything, mock.Anything)
}

func TestPurchase_InactiveEvent(t *testing.T) {
	store := new(MockStore)
	svc := NewInventoryService(store, nil)

	inactive := activeEvent()
	inactive.Active = false

	store.On("GetTicketType", mock.Anything, "tt1").Return(vipTicketType(), nil)
	store.On("GetEvent", mock.Anything, "event1").Return(inactive, nil)

	_, _, err := svc.Purchase(context.Background(), &PurchaseRequest{
		TicketTypeID: "tt1",
		Quantity:     1,
	})

	assert.ErrorIs(t, err, status.ErrConflict)
	store.AssertNotCalled(t, "ReserveInventory", mock.Anything, mock.Anything, mock.Anything)
}

func TestPurchase_RestoresInventoryWhenIssueFails(t *testing.T) {
	store := new(MockStore)
	svc := NewInventoryService(store, nil)

	store.On("GetTicketType", mock.Anything, "tt1").Return(vipTicketType(), nil)
	store.On("GetEvent", mock.Anything, "event1").Return(activeEvent(), nil)
	store.On("ReserveInventory", mock.Anything, "tt1", 3).Return(true, nil)
	store.On("CreateOrder", mock.Anything, mock.Anything).
		Return(&models.Order{ID: "order1"}, nil)
	store.On("CreateTicket", mock.Anything, mock.Anything).
		Return(&models.Ticket{ID: "ticket1"}, nil).Once()
	store.On("CreateTicket", mock.Anything, mock.Anything).
		Return(nil, errors.New("db write failed")).Once()
	store.On("RestoreInventory", mock.Anything, "tt1", 2).Return(nil)

	_, _, err := svc.Purchase(context.Background(), &PurchaseRequest{
		TicketTypeID: "tt1",
		Quantity:     3,
	})

	assert.Error(t, err)
	store.AssertCalled(t, "RestoreInventory", mock.Anything, "tt1", 2)
}

func TestPurchase_InvalidQuantity(t *testing.T) {
	store := new(MockStore)
	svc := NewInventoryService(store, nil)

	_, _, err := svc.Purchase(context.Background(), &PurchaseRequest{
		TicketTypeID: "tt1",
		Quantity:     0,
	})

	assert.ErrorIs(t, err, status.ErrInvalid)
	store.AssertNotCalled(t, "GetTicketType", mock.Anything, mock.Anything)
}
