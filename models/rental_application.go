package models

import (
	"time"

	"rentspace/constants"
)

type RentalApplication struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	UserID      uint      `gorm:"not null;index:idx_application_user_apartment" json:"user_id"`
	ApartmentID uint      `gorm:"not null;index:idx_application_user_apartment" json:"apartment_id"`
	CheckIn     time.Time `gorm:"type:date;not null" json:"check_in"`
	CheckOut    time.Time `gorm:"type:date;not null" json:"check_out"`
	Message     string    `gorm:"type:text" json:"message"`
	Status      string    `gorm:"type:varchar(30);not null;default:pending;index" json:"status"`
	BookingID   *uint     `json:"booking_id,omitempty"`

	Apartment     Apartment                       `gorm:"foreignKey:ApartmentID" json:"-"`
	Modifications []RentalApplicationModification `gorm:"foreignKey:RentalApplicationID" json:"modifications,omitempty"`
}

// RentalApplicationModification is a tenant's proposal to change an
// application. Previous* fields snapshot the application when proposed.
type RentalApplicationModification struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	RentalApplicationID uint      `gorm:"not null;index" json:"rental_application_id"`
	CheckIn             time.Time `gorm:"type:date;not null" json:"check_in"`
	CheckOut            time.Time `gorm:"type:date;not null" json:"check_out"`
	Message             string    `gorm:"type:text" json:"message"`
	PreviousCheckIn     time.Time `gorm:"type:date;not null" json:"previous_check_in"`
	PreviousCheckOut    time.Time `gorm:"type:date;not null" json:"previous_check_out"`
	PreviousMessage     string    `gorm:"type:text" json:"previous_message"`
	PreviousStatus      string    `gorm:"type:varchar(30);not null" json:"previous_status"`
	Status              string    `gorm:"type:varchar(20);not null;default:pending" json:"status"`
}

// HasBooking reports whether the application already produced a booking.
func (a *RentalApplication) HasBooking() bool {
	return a.BookingID != nil && *a.BookingID != 0
}

// IsOpen reports whether the application can still be acted on.
func (a *RentalApplication) IsOpen() bool {
	return a.Status == constants.ApplicationStatusPending ||
		a.Status == constants.ApplicationStatusModifiedPending
}
