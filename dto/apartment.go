package dto

import "rentspace/models"

type ApartmentRequest struct {
	Title         string  `json:"title" binding:"required,max=255"`
	Description   string  `json:"description" binding:"omitempty,max=5000"`
	Governorate   string  `json:"governorate" binding:"required,max=100"`
	City          string  `json:"city" binding:"required,max=100"`
	Address       string  `json:"address" binding:"omitempty,max=255"`
	Rooms         int     `json:"rooms" binding:"required,gte=1"`
	MaxGuests     int     `json:"max_guests" binding:"required,gte=1"`
	PricePerNight float64 `json:"price_per_night" binding:"required,gt=0,max=100000"`
}

type AvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" binding:"required"`
}

// ApartmentFilter is the public listing query.
type ApartmentFilter struct {
	Query       string  `form:"q"`
	Governorate string  `form:"governorate"`
	City        string  `form:"city"`
	MinPrice    float64 `form:"min_price"`
	MaxPrice    float64 `form:"max_price"`
	Rooms       int     `form:"rooms"`
	Guests      int     `form:"guests"`
}

type ApartmentResponse struct {
	ID            uint    `json:"id"`
	OwnerID       uint    `json:"owner_id"`
	OwnerName     string  `json:"owner_name,omitempty"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Governorate   string  `json:"governorate"`
	City          string  `json:"city"`
	Address       string  `json:"address"`
	Rooms         int     `json:"rooms"`
	MaxGuests     int     `json:"max_guests"`
	PricePerNight float64 `json:"price_per_night"`
	PriceSPY      int64   `json:"price_per_night_spy"`
	Status        string  `json:"status"`
	IsAvailable   bool    `json:"is_available"`
	RejectReason  string  `json:"reject_reason,omitempty"`
	RatingAvg     float64 `json:"rating_avg"`
	RatingCount   int     `json:"rating_count"`
}

// NewApartmentResponse renders a. toSPY converts the nightly price.
func NewApartmentResponse(a *models.Apartment, toSPY func(float64) int64) ApartmentResponse {
	resp := ApartmentResponse{
		ID:            a.ID,
		OwnerID:       a.OwnerID,
		Title:         a.Title,
		Description:   a.Description,
		Governorate:   a.Governorate,
		City:          a.City,
		Address:       a.Address,
		Rooms:         a.Rooms,
		MaxGuests:     a.MaxGuests,
		PricePerNight: a.PricePerNight,
		PriceSPY:      toSPY(a.PricePerNight),
		Status:        a.Status,
		IsAvailable:   a.IsAvailable,
		RejectReason:  a.RejectReason,
		RatingAvg:     a.RatingAvg,
		RatingCount:   a.RatingCount,
	}
	if a.Owner.ID != 0 {
		resp.OwnerName = a.Owner.FullName()
	}
	return resp
}

func NewApartmentResponses(apartments []models.Apartment, toSPY func(float64) int64) []ApartmentResponse {
	out := make([]ApartmentResponse, 0, len(apartments))
	for i := range apartments {
		out = append(out, NewApartmentResponse(&apartments[i], toSPY))
	}
	return out
}

// ApartmentSearchResponse carries suggestions when a text search found nothing.
type ApartmentSearchResponse struct {
	Apartments  []ApartmentResponse `json:"apartments"`
	Suggestions []string            `json:"suggestions,omitempty"`
}
