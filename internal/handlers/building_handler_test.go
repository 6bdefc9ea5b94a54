package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dardif/lodging-api/internal/models"
	"github.com/dardif/lodging-api/internal/timezone"
)

func TestBuildingDeleteCascadesEverything(t *testing.T) {
	db := newTestDB(t)
	building, _, _ := seedCascadeFixture(t, db)

	h := NewBuildingHandler(db, nil)
	c, rec := adminDeleteContext(t, building.ID)
	h.Delete(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, countRows(t, db, &models.BlockedDate{}))
	assert.EqualValues(t, 0, countRows(t, db, &models.Booking{}))
	assert.EqualValues(t, 0, countRows(t, db, &models.Apartment{}))
	assert.EqualValues(t, 0, countRows(t, db, &models.Building{}))
}

func TestBuildingDeleteLeavesOtherBuildingsAlone(t *testing.T) {
	db := newTestDB(t)
	building, _, _ := seedCascadeFixture(t, db)

	other := models.Building{Name: "Dar Salam", Location: "Fès", Description: "centro"}
	require.NoError(t, db.Create(&other).Error)
	otherAp := models.Apartment{
		BuildingID:  other.ID,
		Number:      201,
		Name:        "B201",
		Type:        models.ApartmentTypeStudio,
		PricePerDay: 80,
	}
	require.NoError(t, db.Create(&otherAp).Error)
	otherDate := models.BlockedDate{
		ApartmentID: otherAp.ID,
		BookingID:   1,
		Date:        timezone.Day(time.Now().AddDate(0, 0, 14)),
	}
	require.NoError(t, db.Create(&otherDate).Error)

	h := NewBuildingHandler(db, nil)
	c, rec := adminDeleteContext(t, building.ID)
	h.Delete(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, countRows(t, db, &models.Building{}))
	assert.EqualValues(t, 1, countRows(t, db, &models.Apartment{}))
	assert.EqualValues(t, 1, countRows(t, db, &models.BlockedDate{}))
}

func TestBuildingDeleteNotFound(t *testing.T) {
	db := newTestDB(t)

	h := NewBuildingHandler(db, nil)
	c, rec := adminDeleteContext(t, 999)
	h.Delete(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := timezone.ParseDay(s)
	require.NoError(t, err)
	return d
}

func TestRequestedDays(t *testing.T) {
	days, err := requestedDays("2026-10-01", "2026-10-03")
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, mustDay(t, "2026-10-01"), days[0])
	assert.Equal(t, mustDay(t, "2026-10-03"), days[2])

	days, err = requestedDays("", "")
	require.NoError(t, err)
	assert.Nil(t, days)

	_, err = requestedDays("2026-10-03", "2026-10-01")
	assert.Error(t, err)

	_, err = requestedDays("not-a-date", "2026-10-01")
	assert.Error(t, err)
}
