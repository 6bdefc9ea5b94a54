package models

import "time"

const (
	ApartmentTypeAppartement = "Appartement"
	ApartmentTypeStudio      = "Studio"
)

type Apartment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	BuildingID uint      `gorm:"index;not null" json:"building_id"`
	Building   *Building `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"building,omitempty"`

	Number      int     `gorm:"not null" json:"number"`
	Name        string  `gorm:"size:100;not null" json:"name"`
	Type        string  `gorm:"size:20;not null" json:"type"`
	Space       float64 `json:"space"`
	PricePerDay float64 `gorm:"not null" json:"price_per_day"`

	Specification []string `gorm:"serializer:json" json:"specification"`

	// Datas bloqueadas do apartamento. Escrita somente pelo ciclo de
	// vida da reserva, nunca direto pelos handlers.
	NotAvailable []BlockedDate `gorm:"foreignKey:ApartmentID" json:"not_available,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
