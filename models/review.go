package models

import "time"

type Review struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	BookingID   uint      `gorm:"uniqueIndex;not null" json:"booking_id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	ApartmentID uint      `gorm:"not null;index" json:"apartment_id"`
	Rating      int       `gorm:"not null" json:"rating"`
	Comment     string    `gorm:"type:text" json:"comment"`

	User User `gorm:"foreignKey:UserID" json:"user"`
}
