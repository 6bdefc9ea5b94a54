package booking

import (
	"context"

	"github.com/dardif/lodging-api/internal/audit"
	domain "github.com/dardif/lodging-api/internal/domain/booking"
)

// ReleaseDates devolve ao calendário os dias bloqueados de uma
// reserva, marcando-os como liberados sem apagar o histórico.
type ReleaseDates struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewReleaseDates(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *ReleaseDates {
	return &ReleaseDates{
		repo:  repo,
		audit: audit,
	}
}

func (uc *ReleaseDates) Execute(
	ctx context.Context,
	bookingID uint,
) error {

	if err := uc.repo.ReleaseDates(ctx, bookingID); err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		Action:   "booking_dates_released",
		Entity:   "booking",
		EntityID: &bookingID,
	})

	return nil
}
