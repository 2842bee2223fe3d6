package builders

import (
	"time"

	"rentspace/constants"
	"rentspace/models"
)

// BookingBuilder assembles a pending booking and prices it from the
// apartment's nightly rate.
type BookingBuilder struct {
	booking   *models.Booking
	apartment *models.Apartment
}

func NewBookingBuilder() *BookingBuilder {
	return &BookingBuilder{
		booking: &models.Booking{Status: constants.BookingStatusPending},
	}
}

func (b *BookingBuilder) WithTenant(userID uint) *BookingBuilder {
	b.booking.UserID = userID
	return b
}

func (b *BookingBuilder) WithApartment(apartment *models.Apartment) *BookingBuilder {
	b.apartment = apartment
	b.booking.ApartmentID = apartment.ID
	return b
}

func (b *BookingBuilder) WithDates(checkIn, checkOut time.Time) *BookingBuilder {
	b.booking.CheckIn = checkIn
	b.booking.CheckOut = checkOut
	return b
}

func (b *BookingBuilder) WithPaymentDetails(details string) *BookingBuilder {
	b.booking.PaymentDetails = details
	return b
}

func (b *BookingBuilder) FromApplication(applicationID uint) *BookingBuilder {
	id := applicationID
	b.booking.RentalApplicationID = &id
	return b
}

// Build prices the booking. toSPY converts the USD total to wallet units.
func (b *BookingBuilder) Build(toSPY func(float64) int64) *models.Booking {
	if b.apartment != nil {
		b.booking.TotalPrice = float64(b.booking.Nights()) * b.apartment.PricePerNight
		b.booking.PriceSPY = toSPY(b.booking.TotalPrice)
	}
	return b.booking
}
