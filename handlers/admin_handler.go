package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type AdminHandler struct {
	app *pocketbase.PocketBase
}

func NewAdminHandler(app *pocketbase.PocketBase) *AdminHandler {
	return &AdminHandler{app: app}
}

// RequireAdmin - middleware guarding the admin route group
func (h *AdminHandler) RequireAdmin(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}
	if e.Auth.GetString("role") != "admin" {
		return apis.NewForbiddenError("Admin access required", nil)
	}
	return e.Next()
}

// GetStats - Platform-wide totals for the admin dashboard
func (h *AdminHandler) GetStats(e *core.RequestEvent) error {
	var stats struct {
		Events        int64   `db:"events"`
		Users         int64   `db:"users"`
		PaidVotes     int64   `db:"paid_votes"`
		TicketsSold   int64   `db:"tickets_sold"`
		TotalRevenue  float64 `db:"total_revenue"`
		PlatformShare float64 `db:"platform_share"`
	}
	err := h.app.DB().
		NewQuery(`
			SELECT
				(SELECT COUNT(*) FROM events) AS events,
				(SELECT COUNT(*) FROM users) AS users,
				(SELECT COUNT(*) FROM votes WHERE payment_status = 'PAID') AS paid_votes,
				(SELECT COUNT(*) FROM tickets) AS tickets_sold,
				(SELECT COALESCE(SUM(total_amount), 0) FROM transactions) AS total_revenue,
				(SELECT COALESCE(SUM(platform_share), 0) FROM transactions) AS platform_share`).
		One(&stats)
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to load stats", nil)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"events":         stats.Events,
		"users":          stats.Users,
		"paid_votes":     stats.PaidVotes,
		"tickets_sold":   stats.TicketsSold,
		"total_revenue":  stats.TotalRevenue,
		"platform_share": stats.PlatformShare,
	})
}

// ListEvents - All events regardless of active flag
func (h *AdminHandler) ListEvents(e *core.RequestEvent) error {
	records, err := h.app.FindRecordsByFilter("events", "id != ''", "-created", 0, 0)
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to list events", nil)
	}

	return e.JSON(http.StatusOK, map[string]any{"events": records})
}

// ToggleEventActive - Flip an event's active flag (moderation)
func (h *AdminHandler) ToggleEventActive(e *core.RequestEvent) error {
	record, err := h.app.FindRecordById("events", e.Request.PathValue("eventId"))
	if err != nil {
		return apis.NewNotFoundError("Event not found", nil)
	}

	record.Set("active", !record.GetBool("active"))
	if err := h.app.Save(record); err != nil {
		return apis.NewBadRequestError("Failed to update event", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"id":     record.Id,
		"active": record.GetBool("active"),
	})
}

// ListUsers - User directory with roles
func (h *AdminHandler) ListUsers(e *core.RequestEvent) error {
	records, err := h.app.FindRecordsByFilter("users", "id != ''", "-created", 0, 0)
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to list users", nil)
	}

	return e.JSON(http.StatusOK, map[string]any{"users": records})
}

// SetUserRole - Promote or demote a user
func (h *AdminHandler) SetUserRole(e *core.RequestEvent) error {
	var req struct {
		Role string `json:"role"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	switch req.Role {
	case "attendee", "organizer", "admin":
	default:
		return apis.NewBadRequestError("Unknown role", nil)
	}

	record, err := h.app.FindRecordById("users", e.Request.PathValue("userId"))
	if err != nil {
		return apis.NewNotFoundError("User not found", nil)
	}

	record.Set("role", req.Role)
	if err := h.app.Save(record); err != nil {
		return apis.NewBadRequestError("Failed to update user", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"id":   record.Id,
		"role": record.GetString("role"),
	})
}
