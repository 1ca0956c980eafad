package domain

import (
	"fmt"
	"time"
)

type ErrorCode string

const (
	CodeCutoffExpired          ErrorCode = "cutoff_expired"
	CodeOutsideLeadTime        ErrorCode = "outside_lead_time"
	CodeUnavailable            ErrorCode = "unavailable"
	CodeCapacityExceeded       ErrorCode = "capacity_exceeded"
	CodeDuplicateReservation   ErrorCode = "duplicate_reservation"
	CodeConflictingReservation ErrorCode = "conflicting_reservation"
	CodeInvalidTransition      ErrorCode = "invalid_transition"
	CodeInvalidRequest         ErrorCode = "invalid_request"
	CodeNotFound               ErrorCode = "not_found"
	CodeForbidden              ErrorCode = "forbidden"
)

// Error is a rejection the caller can show to the user as-is.
type Error struct {
	Code         ErrorCode  `json:"code"`
	Message      string     `json:"error"`
	CutoffAt     *time.Time `json:"cutoff_at,omitempty"`
	BlockedLanes []int      `json:"blocked_lanes,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// Is matches on code so errors.Is(err, ErrCapacityExceeded) works for any message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrCutoffExpired          = &Error{Code: CodeCutoffExpired, Message: "cutoff expired"}
	ErrOutsideLeadTime        = &Error{Code: CodeOutsideLeadTime, Message: "date is outside the booking lead time"}
	ErrUnavailable            = &Error{Code: CodeUnavailable, Message: "not available on this date"}
	ErrCapacityExceeded       = &Error{Code: CodeCapacityExceeded, Message: "no capacity left"}
	ErrDuplicateReservation   = &Error{Code: CodeDuplicateReservation, Message: "you already have this reservation"}
	ErrConflictingReservation = &Error{Code: CodeConflictingReservation, Message: "you already have a reservation at this time"}
	ErrInvalidTransition      = &Error{Code: CodeInvalidTransition, Message: "invalid transition"}
	ErrInvalidRequest         = &Error{Code: CodeInvalidRequest, Message: "invalid request"}
	ErrNotFound               = &Error{Code: CodeNotFound, Message: "reservation not found"}
	ErrForbidden              = &Error{Code: CodeForbidden, Message: "not allowed"}
)

const CutoffLayout = "Jan 2, 2006 at 3:04 PM"

func CutoffExpired(description string, at time.Time) *Error {
	return &Error{
		Code:     CodeCutoffExpired,
		Message:  fmt.Sprintf("%s has passed (%s)", description, at.Format(CutoffLayout)),
		CutoffAt: &at,
	}
}

func OutsideLeadTime(day time.Time, days int) *Error {
	return &Error{
		Code:    CodeOutsideLeadTime,
		Message: fmt.Sprintf("%s is more than %d days ahead", day.Format(DateLayout), days),
	}
}

func Unavailable(k Kind, day time.Time, reason string) *Error {
	msg := fmt.Sprintf("%s is not available on %s", k.Label(), day.Format(DateLayout))
	if reason != "" {
		msg += ": " + reason
	}
	return &Error{Code: CodeUnavailable, Message: msg}
}

func CapacityExceeded(msg string, blockedLanes []int) *Error {
	return &Error{Code: CodeCapacityExceeded, Message: msg, BlockedLanes: blockedLanes}
}

func DuplicateReservation(existing *Reservation) *Error {
	return &Error{
		Code:    CodeDuplicateReservation,
		Message: "you already have a " + existing.Describe(),
	}
}

func ConflictingReservation(existing *Reservation) *Error {
	return &Error{
		Code:    CodeConflictingReservation,
		Message: "this overlaps your " + existing.Describe(),
	}
}

func InvalidTransition(format string, args ...interface{}) *Error {
	return &Error{Code: CodeInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

func InvalidRequest(format string, args ...interface{}) *Error {
	return &Error{Code: CodeInvalidRequest, Message: fmt.Sprintf(format, args...)}
}
