package dto

import (
	"rentspace/models"
	"rentspace/utils"
)

type CreateBookingRequest struct {
	ApartmentID    uint   `json:"apartment_id" binding:"required"`
	CheckIn        string `json:"check_in" binding:"required,date"`
	CheckOut       string `json:"check_out" binding:"required,date"`
	PaymentDetails string `json:"payment_details" binding:"omitempty,max=1000"`
}

type DateRange struct {
	BookingID uint   `json:"booking_id"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
}

type BookingResponse struct {
	ID                  uint    `json:"id"`
	UserID              uint    `json:"user_id"`
	ApartmentID         uint    `json:"apartment_id"`
	ApartmentTitle      string  `json:"apartment_title,omitempty"`
	CheckIn             string  `json:"check_in"`
	CheckOut            string  `json:"check_out"`
	Nights              int     `json:"nights"`
	Status              string  `json:"status"`
	TotalPrice          float64 `json:"total_price"`
	PriceSPY            int64   `json:"price_spy"`
	PaymentDetails      string  `json:"payment_details,omitempty"`
	RejectionReason     string  `json:"rejection_reason,omitempty"`
	RentalApplicationID *uint   `json:"rental_application_id,omitempty"`
	CreatedAt           string  `json:"created_at"`
}

func NewBookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:                  b.ID,
		UserID:              b.UserID,
		ApartmentID:         b.ApartmentID,
		ApartmentTitle:      b.Apartment.Title,
		CheckIn:             utils.FormatDate(b.CheckIn),
		CheckOut:            utils.FormatDate(b.CheckOut),
		Nights:              b.Nights(),
		Status:              b.Status,
		TotalPrice:          b.TotalPrice,
		PriceSPY:            b.PriceSPY,
		PaymentDetails:      b.PaymentDetails,
		RejectionReason:     b.RejectionReason,
		RentalApplicationID: b.RentalApplicationID,
		CreatedAt:           b.CreatedAt.Format(timestampLayout),
	}
}

func NewBookingResponses(bookings []models.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, NewBookingResponse(&bookings[i]))
	}
	return out
}

// ApproveBookingResponse reports the confirmed booking and how many
// competing requests were rejected with it.
type ApproveBookingResponse struct {
	Booking      BookingResponse `json:"booking"`
	AutoRejected int64           `json:"auto_rejected"`
}
