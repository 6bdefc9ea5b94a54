package models

import "time"

type Booking struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Reference string `gorm:"size:36;uniqueIndex;not null" json:"reference"`

	UserID      uint `gorm:"index;not null" json:"user_id"`
	BuildingID  uint `gorm:"index;not null" json:"building_id"`
	ApartmentID uint `gorm:"index;not null" json:"apartment_id"`

	Dates []BlockedDate `gorm:"foreignKey:BookingID" json:"dates,omitempty"`

	TotalPrice float64 `gorm:"not null" json:"total_price"`
	PaymentID  string  `gorm:"size:64;not null" json:"payment_id"`
	Phone      string  `gorm:"size:20" json:"phone"`

	Status string `gorm:"size:20;default:'active'" json:"status"`

	PaidAt      time.Time  `json:"paid_at"`
	CheckedAt   *time.Time `json:"checked_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BlockedDate é uma data (meia-noite UTC) de uma reserva. Enquanto
// released_at é nulo a data bloqueia o calendário do apartamento; a
// conclusão marca released_at em vez de apagar, preservando o
// histórico de datas da reserva. O índice único parcial em
// (apartment_id, date) impede double-booking no nível do banco sem
// travar dias já liberados.
type BlockedDate struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ApartmentID uint      `gorm:"uniqueIndex:idx_apartment_date,where:released_at IS NULL;not null" json:"apartment_id"`
	BookingID   uint      `gorm:"index;not null" json:"booking_id"`
	Date        time.Time `gorm:"uniqueIndex:idx_apartment_date,where:released_at IS NULL;not null" json:"date"`

	ReleasedAt *time.Time `json:"released_at"`

	CreatedAt time.Time `json:"created_at"`
}
