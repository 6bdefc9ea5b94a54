package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/dardif/lodging-api/internal/domain/booking"
	"github.com/dardif/lodging-api/internal/httperr"
	"github.com/dardif/lodging-api/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// --------------------------------------------------
// Building / Apartment
// --------------------------------------------------

func (r *BookingGormRepository) GetBuildingByID(
	ctx context.Context,
	id uint,
) (*models.Building, error) {

	var b models.Building
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingGormRepository) GetApartmentByID(
	ctx context.Context,
	id uint,
) (*models.Apartment, error) {

	var ap models.Apartment
	if err := r.db.WithContext(ctx).First(&ap, id).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

// --------------------------------------------------
// Calendar
// --------------------------------------------------

func (r *BookingGormRepository) Calendar(
	ctx context.Context,
	apartmentID uint,
) (domain.Calendar, error) {

	var rows []models.BlockedDate
	if err := r.db.WithContext(ctx).
		Where("apartment_id = ? AND released_at IS NULL", apartmentID).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	cal := domain.NewCalendar()
	for _, row := range rows {
		cal.Add(row.Date)
	}
	return cal, nil
}

// --------------------------------------------------
// Booking (create)
// --------------------------------------------------

func (r *BookingGormRepository) CreateBooking(
	ctx context.Context,
	bk *models.Booking,
	dates []time.Time,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		// trava a linha do apartamento: serializa reservas da mesma
		// unidade mesmo se o lock distribuído degradar
		var ap models.Apartment
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&ap, bk.ApartmentID).Error; err != nil {
			return err
		}

		var conflicts int64
		if err := tx.
			Model(&models.BlockedDate{}).
			Where(
				"apartment_id = ? AND date IN ? AND released_at IS NULL",
				bk.ApartmentID, dates,
			).
			Count(&conflicts).Error; err != nil {
			return err
		}

		if conflicts > 0 {
			return httperr.ErrBusiness(httperr.CodeDateConflict)
		}

		if err := tx.Create(bk).Error; err != nil {
			return err
		}

		rows := make([]models.BlockedDate, 0, len(dates))
		for _, d := range dates {
			rows = append(rows, models.BlockedDate{
				ApartmentID: bk.ApartmentID,
				BookingID:   bk.ID,
				Date:        d,
			})
		}

		if err := tx.Create(&rows).Error; err != nil {
			return err
		}

		bk.Dates = rows
		return nil
	})

	if httperr.IsUniqueViolation(err) {
		return httperr.ErrBusiness(httperr.CodeDateConflict)
	}
	return err
}

// --------------------------------------------------
// Booking (state change)
// --------------------------------------------------

func (r *BookingGormRepository) GetBookingByID(
	ctx context.Context,
	id uint,
) (*models.Booking, error) {

	var bk models.Booking
	if err := r.db.WithContext(ctx).
		Preload("Dates").
		First(&bk, id).Error; err != nil {
		return nil, err
	}
	return &bk, nil
}

func (r *BookingGormRepository) UpdateBooking(
	ctx context.Context,
	bk *models.Booking,
) error {
	return r.db.WithContext(ctx).
		Omit("Dates").
		Save(bk).Error
}

func (r *BookingGormRepository) CompleteBooking(
	ctx context.Context,
	bk *models.Booking,
) error {

	// libera o calendário marcando released_at; as linhas ficam como
	// histórico de datas da reserva concluída
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Dates").Save(bk).Error; err != nil {
			return err
		}

		return tx.
			Model(&models.BlockedDate{}).
			Where("booking_id = ? AND released_at IS NULL", bk.ID).
			Update("released_at", bk.CompletedAt).Error
	})
}

// --------------------------------------------------
// Cascade hook
// --------------------------------------------------

func (r *BookingGormRepository) ReleaseDates(
	ctx context.Context,
	bookingID uint,
) error {
	return r.db.WithContext(ctx).
		Model(&models.BlockedDate{}).
		Where("booking_id = ? AND released_at IS NULL", bookingID).
		Update("released_at", time.Now()).Error
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
