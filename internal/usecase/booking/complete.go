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

type Complete struct {
	repo  domain.Repository
	locks Locker
	audit *audit.Dispatcher
}

func NewComplete(
	repo domain.Repository,
	locks Locker,
	audit *audit.Dispatcher,
) *Complete {
	return &Complete{
		repo:  repo,
		locks: locks,
		audit: audit,
	}
}

func (uc *Complete) Execute(
	ctx context.Context,
	bookingID uint,
	actorID uint,
) (*models.Booking, error) {

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

	if err := domain.Complete(bk, timezone.Now()); err != nil {
		return nil, err
	}

	// status + liberação dos dias na mesma transação
	if err := uc.repo.CompleteBooking(ctx, bk); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actorID,
		Action:   "booking_completed",
		Entity:   "booking",
		EntityID: &bk.ID,
	})

	return bk, nil
}
