package httperr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Códigos de negócio do motor de reservas.
const (
	CodeBuildingNotFound    = "building_not_found"
	CodeApartmentNotFound   = "apartment_not_found"
	CodeBookingNotFound     = "booking_not_found"
	CodeUnitNotInBuilding   = "unit_not_in_building"
	CodeEmptyRequest        = "empty_request"
	CodePastDate            = "past_date"
	CodeDuplicateDate       = "duplicate_date"
	CodeDateConflict        = "date_conflict"
	CodePaymentMismatch     = "payment_mismatch"
	CodeAlreadyChecked      = "already_checked"
	CodeAlreadyCompleted    = "already_completed"
	CodeInvalidTransition   = "invalid_transition"
	CodeConcurrencyConflict = "concurrency_conflict"
)

type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func BusinessCode(err error) (string, bool) {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code, true
	}
	return "", false
}

// IsUniqueViolation detecta violação de índice único do Postgres
// (perdeu a corrida pelo mesmo dia do calendário).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// Retryable indica se o cliente pode repetir a requisição inteira.
func Retryable(err error) bool {
	return IsBusiness(err, CodeConcurrencyConflict)
}
