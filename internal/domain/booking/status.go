package booking

import "github.com/dardif/lodging-api/internal/httperr"

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusActive    Status = "active"
	StatusChecked   Status = "checked"
	StatusCompleted Status = "completed"
)

// ===============================
// Validations
// ===============================

// Progressão é sempre para frente: active → checked → completed,
// ou active → completed direto. Nunca volta.

func CanCheckIn(current Status) error {
	switch current {
	case StatusActive:
		return nil
	case StatusChecked:
		return httperr.ErrBusiness(httperr.CodeAlreadyChecked)
	default:
		return httperr.ErrBusiness(httperr.CodeInvalidTransition)
	}
}

func CanComplete(current Status) error {
	switch current {
	case StatusActive, StatusChecked:
		return nil
	case StatusCompleted:
		return httperr.ErrBusiness(httperr.CodeAlreadyCompleted)
	default:
		return httperr.ErrBusiness(httperr.CodeInvalidTransition)
	}
}

func InitialStatus() Status {
	return StatusActive
}
