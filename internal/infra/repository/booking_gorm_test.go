package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domain "github.com/dardif/lodging-api/internal/domain/booking"
	"github.com/dardif/lodging-api/internal/models"
	"github.com/dardif/lodging-api/internal/timezone"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// banco em memória: uma conexão só, senão cada conexão vê um banco
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Building{},
		&models.Apartment{},
		&models.Booking{},
		&models.BlockedDate{},
	))
	return db
}

func seedBooking(t *testing.T, db *gorm.DB, days ...time.Time) *models.Booking {
	t.Helper()

	building := models.Building{Name: "Dar Annour", Location: "Tanger", Description: "perto da praia"}
	require.NoError(t, db.Create(&building).Error)

	apartment := models.Apartment{
		BuildingID:  building.ID,
		Number:      101,
		Name:        "A101",
		Type:        models.ApartmentTypeAppartement,
		PricePerDay: 50,
	}
	require.NoError(t, db.Create(&apartment).Error)

	bk := models.Booking{
		Reference:   uuid.NewString(),
		UserID:      42,
		BuildingID:  building.ID,
		ApartmentID: apartment.ID,
		TotalPrice:  100,
		PaymentID:   "pay-100",
		Status:      string(domain.StatusActive),
		PaidAt:      time.Now(),
	}
	for _, d := range days {
		bk.Dates = append(bk.Dates, models.BlockedDate{
			ApartmentID: apartment.ID,
			Date:        d,
		})
	}
	require.NoError(t, db.Create(&bk).Error)
	return &bk
}

func TestCompleteBookingKeepsDateHistory(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingGormRepository(db)
	ctx := context.Background()

	d1 := timezone.Day(time.Now().AddDate(0, 0, 7))
	d2 := d1.AddDate(0, 0, 1)
	bk := seedBooking(t, db, d1, d2)

	cal, err := repo.Calendar(ctx, bk.ApartmentID)
	require.NoError(t, err)
	assert.Equal(t, 2, cal.Len())

	now := time.Now()
	bk.Status = string(domain.StatusCompleted)
	bk.CompletedAt = &now
	require.NoError(t, repo.CompleteBooking(ctx, bk))

	// calendário livre, mas as linhas continuam ligadas à reserva
	cal, err = repo.Calendar(ctx, bk.ApartmentID)
	require.NoError(t, err)
	assert.Equal(t, 0, cal.Len())

	stored, err := repo.GetBookingByID(ctx, bk.ID)
	require.NoError(t, err)
	require.Len(t, stored.Dates, 2)
	for _, bd := range stored.Dates {
		assert.NotNil(t, bd.ReleasedAt)
	}
}

func TestReleaseDatesKeepsRows(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingGormRepository(db)
	ctx := context.Background()

	d := timezone.Day(time.Now().AddDate(0, 0, 7))
	bk := seedBooking(t, db, d)

	require.NoError(t, repo.ReleaseDates(ctx, bk.ID))

	cal, err := repo.Calendar(ctx, bk.ApartmentID)
	require.NoError(t, err)
	assert.Equal(t, 0, cal.Len())

	var rows []models.BlockedDate
	require.NoError(t, db.Where("booking_id = ?", bk.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.NotNil(t, rows[0].ReleasedAt)
}

func TestPartialIndexAllowsRebookingReleasedDate(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingGormRepository(db)
	ctx := context.Background()

	d := timezone.Day(time.Now().AddDate(0, 0, 7))
	bk := seedBooking(t, db, d)

	// data ativa não pode repetir
	dup := models.BlockedDate{ApartmentID: bk.ApartmentID, BookingID: bk.ID, Date: d}
	assert.Error(t, db.Create(&dup).Error)

	require.NoError(t, repo.ReleaseDates(ctx, bk.ID))

	// depois de liberada, a mesma data volta a ser reservável
	rebook := models.BlockedDate{ApartmentID: bk.ApartmentID, BookingID: bk.ID, Date: d}
	assert.NoError(t, db.Create(&rebook).Error)
}
