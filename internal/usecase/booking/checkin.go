package booking

import (
	"context"
	"errors"

	"github.com/dardif/lodging-api/internal/audit"
	domain "github.com/dardif/lodging-api/internal/domain/booking"
	"github.com/dardif/lodging-api/internal/httperr"
	"github.com/dardif/lodging-api/internal/lock"
	"github.com/dardif/lodging-api/internal/models"
	"github.com/dardif/lodging-api/internal/timezone"
)

type CheckIn struct {
	repo  domain.Repository
	locks Locker
	audit *audit.Dispatcher
}

func NewCheckIn(
	repo domain.Repository,
	locks Locker,
	audit *audit.Dispatcher,
) *CheckIn {
	return &CheckIn{
		repo:  repo,
		locks: locks,
		audit: audit,
	}
}

func (uc *CheckIn) Execute(
	ctx context.Context,
	bookingID uint,
	actorID uint,
) (*models.Booking, error) {

	// serializa mudanças de status da mesma reserva
	release, err := uc.locks.Acquire(ctx, lock.BookingKey(bookingID))
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, httperr.ErrBusiness(httperr.CodeConcurrencyConflict)
		}
		return nil, err
	}
	defer release()

	bk, err := uc.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeBookingNotFound)
	}

	if err := domain.CheckIn(bk, timezone.Now()); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateBooking(ctx, bk); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actorID,
		Action:   "booking_checked_in",
		Entity:   "booking",
		EntityID: &bk.ID,
	})

	return bk, nil
}
