package booking

import (
	"context"
	"time"

	"github.com/dardif/lodging-api/internal/models"
)

type Repository interface {
	// -------- Building / Apartment --------
	GetBuildingByID(
		ctx context.Context,
		id uint,
	) (*models.Building, error)

	GetApartmentByID(
		ctx context.Context,
		id uint,
	) (*models.Apartment, error)

	// -------- Calendar --------
	Calendar(
		ctx context.Context,
		apartmentID uint,
	) (Calendar, error)

	// -------- Booking (create) --------
	// CreateBooking grava a reserva e bloqueia os dias numa única
	// transação, com o apartamento travado e os conflitos re-checados
	// sob o lock. Reserva parcial é impossível.
	CreateBooking(
		ctx context.Context,
		bk *models.Booking,
		dates []time.Time,
	) error

	// -------- Booking (state change) --------
	GetBookingByID(
		ctx context.Context,
		id uint,
	) (*models.Booking, error)

	UpdateBooking(
		ctx context.Context,
		bk *models.Booking,
	) error

	// CompleteBooking salva o novo status e apaga os dias bloqueados
	// da reserva na mesma transação.
	CompleteBooking(
		ctx context.Context,
		bk *models.Booking,
	) error

	// -------- Cascade hook --------
	ReleaseDates(
		ctx context.Context,
		bookingID uint,
	) error
}
