package models

import "time"

type Apartment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	OwnerID       uint      `gorm:"not null;index" json:"owner_id"`
	Title         string    `gorm:"type:varchar(255);not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	Governorate   string    `gorm:"type:varchar(100);index" json:"governorate"`
	City          string    `gorm:"type:varchar(100);index" json:"city"`
	Address       string    `gorm:"type:varchar(255)" json:"address"`
	Rooms         int       `gorm:"not null;default:1" json:"rooms"`
	MaxGuests     int       `gorm:"not null;default:1" json:"max_guests"`
	PricePerNight float64   `gorm:"not null" json:"price_per_night"`
	Status        string    `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	IsAvailable   bool      `gorm:"not null;default:true" json:"is_available"`
	RejectReason  string    `gorm:"type:varchar(255)" json:"reject_reason,omitempty"`
	RatingAvg     float64   `gorm:"not null;default:0" json:"rating_avg"`
	RatingCount   int       `gorm:"not null;default:0" json:"rating_count"`

	Owner User `gorm:"foreignKey:OwnerID" json:"owner"`
}
