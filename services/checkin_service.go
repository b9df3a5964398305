package services

import (
	"context"
	"fmt"
	"time"

	"eventvote/models"
	"eventvote/monitoring"
	"eventvote/status"
	"eventvote/utils"
)

type CheckInService struct {
	store   Store
	monitor *monitoring.Monitor
}

func NewCheckInService(store Store, monitor *monitoring.Monitor) *CheckInService {
	return &CheckInService{store: store, monitor: monitor}
}

// CheckIn admits the ticket behind a scanned code, scoped to the event
// the scanner is authorized for: a code from another event's ticket reads
// as not found. The valid-to-used flip is a conditional update, so two
// scanners racing on the same code see exactly one admission; the loser
// gets the original admission time back.
func (s *CheckInService) CheckIn(ctx context.Context, eventID, code string) (*models.CheckInResult, error) {
	if code == "" {
		s.monitor.TrackCheckIn("invalid")
		return nil, fmt.Errorf("%w: ticket code is required", status.ErrInvalid)
	}

	ticket, err := s.store.GetTicketByCode(ctx, code)
	if err != nil {
		s.monitor.TrackCheckIn("not_found")
		return nil, err
	}

	ticketType, err := s.store.GetTicketType(ctx, ticket.TicketTypeID)
	if err != nil {
		return nil, err
	}
	if ticketType.EventID != eventID {
		s.monitor.TrackCheckIn("wrong_event")
		return nil, fmt.Errorf("%w: no such ticket for this event", status.ErrNotFound)
	}

	switch ticket.Status {
	case models.TicketUsed:
		s.monitor.TrackCheckIn("already_used")
		return nil, s.alreadyUsed(ticket)
	case models.TicketCancelled:
		s.monitor.TrackCheckIn("cancelled")
		return nil, fmt.Errorf("%w: ticket is cancelled", status.ErrConflict)
	}

	usedAt := time.Now().UTC()
	won, err := s.store.MarkTicketUsed(ctx, code, usedAt)
	if err != nil {
		return nil, err
	}
	if !won {
		// Lost the race. Re-read for the admission time the winner wrote.
		s.monitor.TrackCheckIn("already_used")
		current, err := s.store.GetTicketByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if current.Status == models.TicketUsed {
			return nil, s.alreadyUsed(current)
		}
		return nil, fmt.Errorf("%w: ticket is %s", status.ErrConflict, current.Status)
	}

	s.monitor.TrackCheckIn("admitted")

	return &models.CheckInResult{
		TicketID:     ticket.ID,
		TicketTypeID: ticket.TicketTypeID,
		HolderName:   ticket.HolderName,
		UsedAt:       usedAt,
	}, nil
}

func (s *CheckInService) alreadyUsed(ticket *models.Ticket) error {
	usedAt := time.Time{}
	if ticket.UsedAt != nil {
		usedAt = *ticket.UsedAt
	}
	return &status.AlreadyUsedError{Code: ticket.UniqueCode, UsedAt: usedAt}
}

// VerifyGateCode checks a scanner's gate code against the event's stored
// hash. Events without a configured gate code refuse check-in entirely.
func (s *CheckInService) VerifyGateCode(ctx context.Context, eventID, gateCode string) error {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}

	if event.GateCodeHash == "" {
		return fmt.Errorf("%w: check-in is not enabled for this event", status.ErrUnauthorized)
	}

	if !utils.CompareHash([]byte(event.GateCodeHash), []byte(gateCode)) {
		return fmt.Errorf("%w: wrong gate code", status.ErrUnauthorized)
	}

	return nil
}
