package status

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalid      = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("upstream failure")
)

// AlreadyUsedError reports a check-in attempt on a ticket that has already
// been admitted. UsedAt is the original admission time, not the time of the
// failed attempt.
type AlreadyUsedError struct {
	Code   string
	UsedAt time.Time
}

func (e *AlreadyUsedError) Error() string {
	return fmt.Sprintf("ticket %s already used at %s", e.Code, e.UsedAt.Format(time.RFC3339))
}

func (e *AlreadyUsedError) Unwrap() error { return ErrConflict }
