package dto

import (
	"rentspace/models"
	"rentspace/utils"
)

type RentalApplicationRequest struct {
	ApartmentID uint   `json:"apartment_id" binding:"required"`
	CheckIn     string `json:"check_in" binding:"required,date"`
	CheckOut    string `json:"check_out" binding:"required,date"`
	Message     string `json:"message" binding:"omitempty,max=2000"`
}

type ModificationRequest struct {
	CheckIn  string `json:"check_in" binding:"required,date"`
	CheckOut string `json:"check_out" binding:"required,date"`
	Message  string `json:"message" binding:"omitempty,max=2000"`
}

type ModificationResponse struct {
	ID               uint   `json:"id"`
	CheckIn          string `json:"check_in"`
	CheckOut         string `json:"check_out"`
	Message          string `json:"message"`
	PreviousCheckIn  string `json:"previous_check_in"`
	PreviousCheckOut string `json:"previous_check_out"`
	PreviousStatus   string `json:"previous_status"`
	Status           string `json:"status"`
	CreatedAt        string `json:"created_at"`
}

type RentalApplicationResponse struct {
	ID            uint                   `json:"id"`
	UserID        uint                   `json:"user_id"`
	ApartmentID   uint                   `json:"apartment_id"`
	CheckIn       string                 `json:"check_in"`
	CheckOut      string                 `json:"check_out"`
	Message       string                 `json:"message"`
	Status        string                 `json:"status"`
	BookingID     *uint                  `json:"booking_id,omitempty"`
	Modifications []ModificationResponse `json:"modifications,omitempty"`
	CreatedAt     string                 `json:"created_at"`
}

func NewModificationResponse(m *models.RentalApplicationModification) ModificationResponse {
	return ModificationResponse{
		ID:               m.ID,
		CheckIn:          utils.FormatDate(m.CheckIn),
		CheckOut:         utils.FormatDate(m.CheckOut),
		Message:          m.Message,
		PreviousCheckIn:  utils.FormatDate(m.PreviousCheckIn),
		PreviousCheckOut: utils.FormatDate(m.PreviousCheckOut),
		PreviousStatus:   m.PreviousStatus,
		Status:           m.Status,
		CreatedAt:        m.CreatedAt.Format(timestampLayout),
	}
}

func NewRentalApplicationResponse(a *models.RentalApplication) RentalApplicationResponse {
	resp := RentalApplicationResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		ApartmentID: a.ApartmentID,
		CheckIn:     utils.FormatDate(a.CheckIn),
		CheckOut:    utils.FormatDate(a.CheckOut),
		Message:     a.Message,
		Status:      a.Status,
		BookingID:   a.BookingID,
		CreatedAt:   a.CreatedAt.Format(timestampLayout),
	}
	for i := range a.Modifications {
		resp.Modifications = append(resp.Modifications, NewModificationResponse(&a.Modifications[i]))
	}
	return resp
}

func NewRentalApplicationResponses(rows []models.RentalApplication) []RentalApplicationResponse {
	out := make([]RentalApplicationResponse, 0, len(rows))
	for i := range rows {
		out = append(out, NewRentalApplicationResponse(&rows[i]))
	}
	return out
}
