package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"eventvote/services"
)

type CheckInHandler struct {
	checkInService *services.CheckInService
}

func NewCheckInHandler(checkInService *services.CheckInService) *CheckInHandler {
	return &CheckInHandler{checkInService: checkInService}
}

// CheckIn - Admit a scanned ticket code. The scanner authenticates with
// the event's gate code; a second scan of the same ticket conflicts and
// reports the original admission time.
func (h *CheckInHandler) CheckIn(e *core.RequestEvent) error {
	var req struct {
		EventID  string `json:"event_id"`
		GateCode string `json:"gate_code"`
		Code     string `json:"code"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if req.EventID == "" {
		return apis.NewBadRequestError("Event is required", nil)
	}

	ctx := e.Request.Context()

	if err := h.checkInService.VerifyGateCode(ctx, req.EventID, req.GateCode); err != nil {
		return toAPIError(err)
	}

	result, err := h.checkInService.CheckIn(ctx, req.EventID, req.Code)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"status":  "admitted",
		"checkin": result,
	})
}
