package handlers

import (
	"net/http"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"eventvote/utils"
)

type EventHandler struct {
	app *pocketbase.PocketBase
}

func NewEventHandler(app *pocketbase.PocketBase) *EventHandler {
	return &EventHandler{app: app}
}

func (h *EventHandler) canManage(e *core.RequestEvent, organizerID string) bool {
	if e.Auth == nil {
		return false
	}
	return e.Auth.Id == organizerID || e.Auth.GetString("role") == "admin"
}

// ownedEvent loads an event and enforces that the caller organizes it.
func (h *EventHandler) ownedEvent(e *core.RequestEvent, eventID string) (*core.Record, error) {
	record, err := h.app.FindRecordById("events", eventID)
	if err != nil {
		return nil, apis.NewNotFoundError("Event not found", nil)
	}
	if !h.canManage(e, record.GetString("organizer")) {
		return nil, apis.NewForbiddenError("Access denied", nil)
	}
	return record, nil
}

// CreateEvent - Create a new event owned by the authenticated organizer
func (h *EventHandler) CreateEvent(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		Title        string  `json:"title"`
		Description  string  `json:"description"`
		Location     string  `json:"location"`
		StartAt      string  `json:"start_at"`
		EndAt        string  `json:"end_at"`
		BannerURL    string  `json:"banner_url"`
		PricePerVote float64 `json:"price_per_vote"`
		GateCode     string  `json:"gate_code"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if req.Title == "" {
		return apis.NewBadRequestError("Title is required", nil)
	}
	if req.PricePerVote < 0 {
		return apis.NewBadRequestError("Price per vote cannot be negative", nil)
	}

	collection, err := h.app.FindCollectionByNameOrId("events")
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to create event", nil)
	}

	record := core.NewRecord(collection)
	record.Set("organizer", e.Auth.Id)
	record.Set("title", req.Title)
	record.Set("description", req.Description)
	record.Set("location", req.Location)
	record.Set("start_at", req.StartAt)
	record.Set("end_at", req.EndAt)
	record.Set("banner_url", req.BannerURL)
	record.Set("price_per_vote", req.PricePerVote)
	record.Set("active", true)

	if req.GateCode != "" {
		hash, err := utils.GenerateHash([]byte(req.GateCode))
		if err != nil {
			return apis.NewApiError(http.StatusInternalServerError, "Failed to create event", nil)
		}
		record.Set("gate_code_hash", hash)
	}

	if err := h.app.Save(record); err != nil {
		return apis.NewBadRequestError("Failed to create event", err)
	}

	return e.JSON(http.StatusCreated, record)
}

// UpdateEvent - Update fields of an owned event
func (h *EventHandler) UpdateEvent(e *core.RequestEvent) error {
	record, err := h.ownedEvent(e, e.Request.PathValue("eventId"))
	if err != nil {
		return err
	}

	body := map[string]any{}
	if err := e.BindBody(&body); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	for _, field := range []string{"title", "description", "location", "start_at", "end_at", "banner_url", "price_per_vote", "active"} {
		if value, ok := body[field]; ok {
			record.Set(field, value)
		}
	}

	if err := h.app.Save(record); err != nil {
		return apis.NewBadRequestError("Failed to update event", err)
	}

	return e.JSON(http.StatusOK, record)
}

// DeleteEvent - Delete an owned event and its cascading children
func (h *EventHandler) DeleteEvent(e *core.RequestEvent) error {
	record, err := h.ownedEvent(e, e.Request.PathValue("eventId"))
	if err != nil {
		return err
	}

	if err := h.app.Delete(record); err != nil {
		return apis.NewBadRequestError("Failed to delete event", err)
	}

	return e.JSON(http.StatusOK, map[string]any{"message": "Event deleted"})
}

// GetEvent - Public event detail with its categories and nominees
func (h *EventHandler) GetEvent(e *core.RequestEvent) error {
	eventID := e.Request.PathValue("eventId")

	record, err := h.app.FindRecordById("events", eventID)
	if err != nil {
		return apis.NewNotFoundError("Event not found", nil)
	}

	categories, err := h.app.FindRecordsByFilter(
		"categories",
		"event = {:event}",
		"created",
		0,
		0,
		dbx.Params{"event": eventID},
	)
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to load event", nil)
	}

	categoryViews := make([]map[string]any, 0, len(categories))
	for _, category := range categories {
		nominees, err := h.app.FindRecordsByFilter(
			"nominees",
			"category = {:category}",
			"created",
			0,
			0,
			dbx.Params{"category": category.Id},
		)
		if err != nil {
			return apis.NewApiError(http.StatusInternalServerError, "Failed to load event", nil)
		}

		categoryViews = append(categoryViews, map[string]any{
			"id":       category.Id,
			"name":     category.GetString("name"),
			"nominees": nominees,
		})
	}

	ticketTypes, err := h.app.FindRecordsByFilter(
		"ticket_types",
		"event = {:event}",
		"created",
		0,
		0,
		dbx.Params{"event": eventID},
	)
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to load event", nil)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"event":        record,
		"categories":   categoryViews,
		"ticket_types": ticketTypes,
	})
}

// ListEvents - Public listing of active events; organizers also see their
// own inactive ones
func (h *EventHandler) ListEvents(e *core.RequestEvent) error {
	filter := "active = true"
	params := dbx.Params{}

	if e.Auth != nil {
		filter = "active = true || organizer = {:auth}"
		params["auth"] = e.Auth.Id
	}

	records, err := h.app.FindRecordsByFilter("events", filter, "-created", 0, 0, params)
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to list events", nil)
	}

	return e.JSON(http.StatusOK, map[string]any{"events": records})
}

// SetGateCode - Rotate the event's check-in gate code
func (h *EventHandler) SetGateCode(e *core.RequestEvent) error {
	record, err := h.ownedEvent(e, e.Request.PathValue("eventId"))
	if err != nil {
		return err
	}

	var req struct {
		GateCode string `json:"gate_code"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if req.GateCode == "" {
		return apis.NewBadRequestError("Gate code is required", nil)
	}

	hash, err := utils.GenerateHash([]byte(req.GateCode))
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to set gate code", nil)
	}

	record.Set("gate_code_hash", hash)
	if err := h.app.Save(record); err != nil {
		return apis.NewBadRequestError("Failed to set gate code", err)
	}

	return e.JSON(http.StatusOK, map[string]any{"message": "Gate code updated"})
}

// GetRevenue - Organizer revenue summary from settled transactions
func (h *EventHandler) GetRevenue(e *core.RequestEvent) error {
	record, err := h.ownedEvent(e, e.Request.PathValue("eventId"))
	if err != nil {
		return err
	}

	var row struct {
		Count          int64   `db:"count"`
		TotalAmount    float64 `db:"total_amount"`
		OrganizerShare float64 `db:"organizer_share"`
		PlatformShare  float64 `db:"platform_share"`
	}
	err = h.app.DB().
		NewQuery(`
			SELECT
				COUNT(*) AS count,
				COALESCE(SUM(total_amount), 0) AS total_amount,
				COALESCE(SUM(organizer_share), 0) AS organizer_share,
				COALESCE(SUM(platform_share), 0) AS platform_share
			FROM transactions
			WHERE event = {:event}`).
		Bind(dbx.Params{"event": record.Id}).
		One(&row)
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to load revenue", nil)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"event_id":        record.Id,
		"transactions":    row.Count,
		"total_amount":    row.TotalAmount,
		"organizer_share": row.OrganizerShare,
		"platform_share":  row.PlatformShare,
	})
}

// CreateCategory - Add a voting category to an owned event
func (h *EventHandler) CreateCategory(e *core.RequestEvent) error {
	event, err := h.ownedEvent(e, e.Request.PathValue("eventId"))
	if err != nil {
		return err
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if req.Name == "" {
		return apis.NewBadRequestError("Name is required", nil)
	}

	collection, err := h.app.FindCollectionByNameOrId("categories")
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to create category", nil)
	}

	record := core.NewRecord(collection)
	record.Set("event", event.Id)
	record.Set("name", req.Name)

	if err := h.app.Save(record); err != nil {
		return apis.NewBadRequestError("Failed to create category", err)
	}

	return e.JSON(http.StatusCreated, record)
}

// DeleteCategory - Remove a category and its nominees
func (h *EventHandler) DeleteCategory(e *core.RequestEvent) error {
	category, err := h.ownedCategory(e, e.Request.PathValue("categoryId"))
	if err != nil {
		return err
	}

	if err := h.app.Delete(category); err != nil {
		return apis.NewBadRequestError("Failed to delete category", err)
	}

	return e.JSON(http.StatusOK, map[string]any{"message": "Category deleted"})
}

func (h *EventHandler) ownedCategory(e *core.RequestEvent, categoryID string) (*core.Record, error) {
	category, err := h.app.FindRecordById("categories", categoryID)
	if err != nil {
		return nil, apis.NewNotFoundError("Category not found", nil)
	}
	if _, err := h.ownedEvent(e, category.GetString("event")); err != nil {
		return nil, err
	}
	return category, nil
}

// CreateNominee - Add a nominee to an owned category
func (h *EventHandler) CreateNominee(e *core.RequestEvent) error {
	category, err := h.ownedCategory(e, e.Request.PathValue("categoryId"))
	if err != nil {
		return err
	}

	var req struct {
		Name     string `json:"name"`
		PhotoURL string `json:"photo_url"`
		Bio      string `json:"bio"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if req.Name == "" {
		return apis.NewBadRequestError("Name is required", nil)
	}

	collection, err := h.app.FindCollectionByNameOrId("nominees")
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to create nominee", nil)
	}

	record := core.NewRecord(collection)
	record.Set("category", category.Id)
	record.Set("name", req.Name)
	record.Set("photo_url", req.PhotoURL)
	record.Set("bio", req.Bio)

	if err := h.app.Save(record); err != nil {
		return apis.NewBadRequestError("Failed to create nominee", err)
	}

	return e.JSON(http.StatusCreated, record)
}

// DeleteNominee - Remove a nominee; its vote rows stay for the audit trail
func (h *EventHandler) DeleteNominee(e *core.RequestEvent) error {
	nominee, err := h.app.FindRecordById("nominees", e.Request.PathValue("nomineeId"))
	if err != nil {
		return apis.NewNotFoundError("Nominee not found", nil)
	}
	if _, err := h.ownedCategory(e, nominee.GetString("category")); err != nil {
		return err
	}

	if err := h.app.Delete(nominee); err != nil {
		return apis.NewBadRequestError("Failed to delete nominee", err)
	}

	return e.JSON(http.StatusOK, map[string]any{"message": "Nominee deleted"})
}

// CreateTicketType - Add a ticket class; remaining starts equal to total
func (h *EventHandler) CreateTicketType(e *core.RequestEvent) error {
	event, err := h.ownedEvent(e, e.Request.PathValue("eventId"))
	if err != nil {
		return err
	}

	var req struct {
		Name          string  `json:"name"`
		Description   string  `json:"description"`
		Price         float64 `json:"price"`
		TotalQuantity int     `json:"total_quantity"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if req.Name == "" {
		return apis.NewBadRequestError("Name is required", nil)
	}
	if req.TotalQuantity < 1 {
		return apis.NewBadRequestError("Total quantity must be at least 1", nil)
	}
	if req.Price < 0 {
		return apis.NewBadRequestError("Price cannot be negative", nil)
	}

	collection, err := h.app.FindCollectionByNameOrId("ticket_types")
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to create ticket type", nil)
	}

	record := core.NewRecord(collection)
	record.Set("event", event.Id)
	record.Set("name", req.Name)
	record.Set("description", req.Description)
	record.Set("price", req.Price)
	record.Set("total_quantity", req.TotalQuantity)
	record.Set("remaining_quantity", req.TotalQuantity)

	if err := h.app.Save(record); err != nil {
		return apis.NewBadRequestError("Failed to create ticket type", err)
	}

	return e.JSON(http.StatusCreated, record)
}

// UpdateTicketType - Update price and description; quantities only move
// through the purchase path
func (h *EventHandler) UpdateTicketType(e *core.RequestEvent) error {
	ticketType, err := h.app.FindRecordById("ticket_types", e.Request.PathValue("ticketTypeId"))
	if err != nil {
		return apis.NewNotFoundError("Ticket type not found", nil)
	}
	if _, err := h.ownedEvent(e, ticketType.GetString("event")); err != nil {
		return err
	}

	body := map[string]any{}
	if err := e.BindBody(&body); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	for _, field := range []string{"name", "description", "price"} {
		if value, ok := body[field]; ok {
			ticketType.Set(field, value)
		}
	}

	if err := h.app.Save(ticketType); err != nil {
		return apis.NewBadRequestError("Failed to update ticket type", err)
	}

	return e.JSON(http.StatusOK, ticketType)
}
