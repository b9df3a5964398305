package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"eventvote/models"
	"eventvote/services"
	"eventvote/services/provider"
)

type WebhookHandler struct {
	paymentService  *services.PaymentService
	paymentProvider provider.Provider
}

func NewWebhookHandler(paymentService *services.PaymentService, paymentProvider provider.Provider) *WebhookHandler {
	return &WebhookHandler{
		paymentService:  paymentService,
		paymentProvider: paymentProvider,
	}
}

// HandlePaymentWebhook - Provider notification endpoint. The signature is
// checked over the raw body before decoding. Duplicates and non-success
// events are acknowledged with 200 so the provider stops retrying.
func (h *WebhookHandler) HandlePaymentWebhook(e *core.RequestEvent) error {
	body, err := io.ReadAll(e.Request.Body)
	if err != nil {
		return e.JSON(http.StatusBadRequest, map[string]any{"status": "error", "message": "Unreadable body"})
	}

	signature := e.Request.Header.Get("x-paystack-signature")
	if !h.paymentProvider.VerifySignature(body, signature) {
		slog.Error("Webhook signature mismatch", "ip", e.RealIP())
		return e.JSON(http.StatusBadRequest, map[string]any{"status": "error", "message": "Invalid signature"})
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return e.JSON(http.StatusBadRequest, map[string]any{"status": "error", "message": "Invalid payload"})
	}

	// Providers notify in their own unit (Paystack uses minor units);
	// reconciliation works in major units.
	event.Data.Amount = h.paymentProvider.NormalizeWebhookAmount(event.Data.Amount)

	if err := h.paymentService.HandleWebhook(e.Request.Context(), &event); err != nil {
		slog.Error("Webhook processing failed", "error", err, "event", event.Event, "transaction_id", event.Data.ID)
		return e.JSON(http.StatusBadRequest, map[string]any{"status": "error", "message": "Processing failed"})
	}

	return e.JSON(http.StatusOK, map[string]any{"status": "success"})
}

// SimulatePayment - Development helper: settle a pending vote or order as
// if the provider had delivered a charge.success webhook.
func (h *WebhookHandler) SimulatePayment(e *core.RequestEvent) error {
	var req struct {
		VoteID      string  `json:"vote_id"`
		OrderID     string  `json:"order_id"`
		OrganizerID string  `json:"organizer_id"`
		Amount      float64 `json:"amount"`
		Reference   string  `json:"reference"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if req.Reference == "" {
		return apis.NewBadRequestError("Reference is required", nil)
	}

	event := &models.WebhookEvent{
		Event: "charge.success",
		Data: models.WebhookData{
			ID:     "sim_" + req.Reference,
			Amount: decimal.NewFromFloat(req.Amount),
			Metadata: models.WebhookMetadata{
				VoteID:      req.VoteID,
				OrderID:     req.OrderID,
				OrganizerID: req.OrganizerID,
			},
		},
	}

	if err := h.paymentService.HandleWebhook(e.Request.Context(), event); err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"status": "success"})
}
