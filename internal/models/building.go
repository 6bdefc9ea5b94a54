package models

import "time"

type Building struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name        string  `gorm:"size:100;not null" json:"name"`
	Location    string  `gorm:"size:100;not null" json:"location"`
	Distance    float64 `json:"distance"`
	Description string  `gorm:"size:500;not null" json:"description"`

	Specification []string `gorm:"serializer:json" json:"specification"`

	Apartments []Apartment `gorm:"foreignKey:BuildingID" json:"apartments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
