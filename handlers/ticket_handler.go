package handlers

import (
	"net/http"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"eventvote/services"
)

type TicketHandler struct {
	app              *pocketbase.PocketBase
	inventoryService *services.InventoryService
	paymentService   *services.PaymentService
}

func NewTicketHandler(
	app *pocketbase.PocketBase,
	inventoryService *services.InventoryService,
	paymentService *services.PaymentService,
) *TicketHandler {
	return &TicketHandler{
		app:              app,
		inventoryService: inventoryService,
		paymentService:   paymentService,
	}
}

// Purchase - Reserve inventory and issue tickets for an order
func (h *TicketHandler) Purchase(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req services.PurchaseRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	req.VoterID = e.Auth.Id
	if req.HolderName == "" {
		req.HolderName = e.Auth.GetString("name")
	}

	order, tickets, err := h.inventoryService.Purchase(e.Request.Context(), &req)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusCreated, map[string]any{
		"order":   order,
		"tickets": tickets,
	})
}

// PayOrder - Start provider checkout for a pending order
func (h *TicketHandler) PayOrder(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	orderID := e.Request.PathValue("orderId")

	order, err := h.app.FindRecordById("orders", orderID)
	if err != nil {
		return apis.NewNotFoundError("Order not found", nil)
	}
	if order.GetString("voter") != e.Auth.Id {
		return apis.NewForbiddenError("Access denied", nil)
	}

	init, err := h.paymentService.InitializeOrderPayment(e.Request.Context(), orderID, e.Auth.GetString("email"))
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, init)
}

// MyTickets - Tickets across all of the caller's orders
func (h *TicketHandler) MyTickets(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	orders, err := h.app.FindRecordsByFilter(
		"orders",
		"voter = {:voter}",
		"-created",
		0,
		0,
		dbx.Params{"voter": e.Auth.Id},
	)
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to load tickets", nil)
	}

	views := make([]map[string]any, 0, len(orders))
	for _, order := range orders {
		tickets, err := h.inventoryService.TicketsForOrder(e.Request.Context(), order.Id)
		if err != nil {
			return toAPIError(err)
		}

		views = append(views, map[string]any{
			"order":   order,
			"tickets": tickets,
		})
	}

	return e.JSON(http.StatusOK, map[string]any{"orders": views})
}
