package models

import "time"

type Booking struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	UserID              uint      `gorm:"not null;index" json:"user_id"`
	ApartmentID         uint      `gorm:"not null;index:idx_booking_apartment_status" json:"apartment_id"`
	CheckIn             time.Time `gorm:"type:date;not null" json:"check_in"`
	CheckOut            time.Time `gorm:"type:date;not null" json:"check_out"`
	Status              string    `gorm:"type:varchar(20);not null;default:pending;index:idx_booking_apartment_status" json:"status"`
	TotalPrice          float64   `gorm:"not null" json:"total_price"`
	PriceSPY            int64     `gorm:"column:price_spy;not null" json:"price_spy"`
	PaymentDetails      string    `gorm:"type:text" json:"payment_details,omitempty"`
	RejectionReason     string    `gorm:"type:varchar(255)" json:"rejection_reason,omitempty"`
	RentalApplicationID *uint     `gorm:"index" json:"rental_application_id,omitempty"`

	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Apartment Apartment `gorm:"foreignKey:ApartmentID" json:"-"`
}

// Nights is the number of nights in [CheckIn, CheckOut).
func (b *Booking) Nights() int {
	return NightsBetween(b.CheckIn, b.CheckOut)
}

// State returns the state object for the current status.
func (b *Booking) State() BookingState {
	return GetBookingState(b.Status)
}

// NightsBetween counts whole days between two dates.
func NightsBetween(checkIn, checkOut time.Time) int {
	return int(checkOut.Sub(checkIn).Hours() / 24)
}

// Overlaps reports whether the half-open ranges [a, b) and [c, d) intersect.
func Overlaps(a, b, c, d time.Time) bool {
	return a.Before(d) && c.Before(b)
}
