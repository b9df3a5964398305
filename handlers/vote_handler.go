package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"eventvote/services"
)

type VoteHandler struct {
	voteService *services.VoteService
}

func NewVoteHandler(voteService *services.VoteService) *VoteHandler {
	return &VoteHandler{voteService: voteService}
}

// CastVote - Cast a vote for a nominee; free events settle immediately,
// priced events answer with a checkout URL
func (h *VoteHandler) CastVote(e *core.RequestEvent) error {
	var req services.VoteRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	req.EventID = e.Request.PathValue("eventId")
	if e.Auth != nil {
		req.VoterID = e.Auth.Id
		if req.Email == "" {
			req.Email = e.Auth.GetString("email")
		}
	}

	receipt, err := h.voteService.CastVote(e.Request.Context(), &req)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusCreated, receipt)
}

// GetResults - Live per-nominee tally for an event
func (h *VoteHandler) GetResults(e *core.RequestEvent) error {
	tally, err := h.voteService.Results(e.Request.Context(), e.Request.PathValue("eventId"))
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"results": tally})
}
