package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"

	"eventvote/status"
)

// toAPIError translates service-layer errors into API responses. An
// already-used ticket is a conflict that carries the original admission
// time so the gate staff can see when the code was first scanned.
func toAPIError(err error) error {
	var alreadyUsed *status.AlreadyUsedError
	if errors.As(err, &alreadyUsed) {
		return apis.NewApiError(http.StatusConflict, "Ticket already used", map[string]any{
			"used_at": alreadyUsed.UsedAt,
		})
	}

	switch {
	case errors.Is(err, status.ErrNotFound):
		return apis.NewNotFoundError("Not found", nil)
	case errors.Is(err, status.ErrInvalid):
		return apis.NewBadRequestError(err.Error(), nil)
	case errors.Is(err, status.ErrConflict):
		return apis.NewApiError(http.StatusConflict, err.Error(), nil)
	case errors.Is(err, status.ErrUnauthorized):
		return apis.NewUnauthorizedError(err.Error(), nil)
	case errors.Is(err, status.ErrUpstream):
		return apis.NewApiError(http.StatusBadGateway, "Payment provider unavailable", nil)
	default:
		slog.Error("Unhandled service error", "error", err)
		return apis.NewApiError(http.StatusInternalServerError, "Something went wrong", nil)
	}
}
