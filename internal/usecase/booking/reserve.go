package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dardif/lodging-api/internal/audit"
	domain "github.com/dardif/lodging-api/internal/domain/booking"
	"github.com/dardif/lodging-api/internal/httperr"
	"github.com/dardif/lodging-api/internal/lock"
	"github.com/dardif/lodging-api/internal/models"
	"github.com/dardif/lodging-api/internal/payment"
	"github.com/dardif/lodging-api/internal/timezone"
)

// Locker serializa validação + commit por chave (apartamento ou
// reserva). Em produção é o lock Redis de internal/lock.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// ======================================================
// INPUT
// ======================================================

type ReserveInput struct {
	BuildingID  uint
	ApartmentID uint
	UserID      uint

	Dates      []time.Time
	TotalPrice float64
	PaymentID  string
	Phone      string
}

// ======================================================
// USE CASE
// ======================================================

type Reserve struct {
	repo     domain.Repository
	payments payment.Authority
	locks    Locker
	audit    *audit.Dispatcher
}

func NewReserve(
	repo domain.Repository,
	payments payment.Authority,
	locks Locker,
	audit *audit.Dispatcher,
) *Reserve {
	return &Reserve{
		repo:     repo,
		payments: payments,
		locks:    locks,
		audit:    audit,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *Reserve) Execute(
	ctx context.Context,
	in ReserveInput,
) (*models.Booking, error) {

	// --------------------------------------------------
	// 1. Prédio e apartamento
	// --------------------------------------------------
	building, err := uc.repo.GetBuildingByID(ctx, in.BuildingID)
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeBuildingNotFound)
	}

	apartment, err := uc.repo.GetApartmentByID(ctx, in.ApartmentID)
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeApartmentNotFound)
	}

	if apartment.BuildingID != building.ID {
		return nil, httperr.ErrBusiness(httperr.CodeUnitNotInBuilding)
	}

	// --------------------------------------------------
	// 2. Pagamento já confirmado pela autoridade externa
	// --------------------------------------------------
	info, err := uc.payments.Get(ctx, in.PaymentID)
	if err != nil {
		// timeout/cancel não é veredito de pagamento: sobe como falha
		// repetível, nunca como payment_mismatch
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, httperr.ErrBusiness(httperr.CodePaymentMismatch)
	}
	if info.Status != payment.StatusApproved || info.Amount != in.TotalPrice {
		return nil, httperr.ErrBusiness(httperr.CodePaymentMismatch)
	}

	// --------------------------------------------------
	// 3. Exclusão mútua por apartamento: ler calendário,
	//    validar e gravar sem janela para corrida
	// --------------------------------------------------
	release, err := uc.locks.Acquire(ctx, lock.ApartmentKey(apartment.ID))
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, httperr.ErrBusiness(httperr.CodeConcurrencyConflict)
		}
		return nil, err
	}
	defer release()

	cal, err := uc.repo.Calendar(ctx, apartment.ID)
	if err != nil {
		return nil, err
	}

	days, err := domain.Validate(in.Dates, cal, timezone.Now())
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 4. Commit atômico: reserva + dias bloqueados
	// --------------------------------------------------
	now := timezone.Now()
	bk := &models.Booking{
		Reference:   uuid.NewString(),
		UserID:      in.UserID,
		BuildingID:  building.ID,
		ApartmentID: apartment.ID,
		TotalPrice:  in.TotalPrice,
		PaymentID:   in.PaymentID,
		Phone:       in.Phone,
		Status:      string(domain.InitialStatus()),
		PaidAt:      now,
	}

	if err := uc.repo.CreateBooking(ctx, bk, days); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.UserID,
		Action:   "booking_created",
		Entity:   "booking",
		EntityID: &bk.ID,
		Metadata: map[string]any{
			"apartment_id": apartment.ID,
			"days":         len(days),
		},
	})

	return bk, nil
}
