package booking

import (
	"time"

	"github.com/dardif/lodging-api/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func CheckIn(bk *models.Booking, now time.Time) error {
	if err := CanCheckIn(Status(bk.Status)); err != nil {
		return err
	}

	bk.Status = string(StatusChecked)
	bk.CheckedAt = &now
	return nil
}

// Complete é a única transição que libera dias do calendário: o
// repositório deve apagar os BlockedDate da reserva na mesma transação.
func Complete(bk *models.Booking, now time.Time) error {
	if err := CanComplete(Status(bk.Status)); err != nil {
		return err
	}

	bk.Status = string(StatusCompleted)
	bk.CompletedAt = &now
	return nil
}
