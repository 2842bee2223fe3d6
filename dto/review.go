package dto

import "rentspace/models"

type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"omitempty,max=2000"`
}

type ReviewResponse struct {
	ID          uint   `json:"id"`
	BookingID   uint   `json:"booking_id"`
	ApartmentID uint   `json:"apartment_id"`
	UserID      uint   `json:"user_id"`
	UserName    string `json:"user_name,omitempty"`
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`
	CreatedAt   string `json:"created_at"`
}

func NewReviewResponse(r *models.Review) ReviewResponse {
	resp := ReviewResponse{
		ID:          r.ID,
		BookingID:   r.BookingID,
		ApartmentID: r.ApartmentID,
		UserID:      r.UserID,
		Rating:      r.Rating,
		Comment:     r.Comment,
		CreatedAt:   r.CreatedAt.Format(timestampLayout),
	}
	if r.User.ID != 0 {
		resp.UserName = r.User.FullName()
	}
	return resp
}

func NewReviewResponses(rows []models.Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(rows))
	for i := range rows {
		out = append(out, NewReviewResponse(&rows[i]))
	}
	return out
}
