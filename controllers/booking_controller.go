package controllers

import (
	"rentspace/dto"
	"rentspace/response"
	"rentspace/services"
	"rentspace/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type BookingController struct {
	bookings *services.BookingService
	reviews  *services.ReviewService
	logger   zerolog.Logger
}

func NewBookingController(bookings *services.BookingService, reviews *services.ReviewService, logger zerolog.Logger) *BookingController {
	return &BookingController{bookings: bookings, reviews: reviews, logger: logger}
}

// CreateBooking godoc
// @Summary  Request a booking
// @Tags     bookings
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body dto.CreateBookingRequest true "stay"
// @Success  201 {object} response.Response
// @Failure  422 {object} response.ErrorResponse
// @Router   /bookings [post]
func (ctl *BookingController) CreateBooking(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req dto.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	booking, err := ctl.bookings.Create(c.Request.Context(), p, req)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Created(c, "booking request sent", dto.NewBookingResponse(booking))
}

// ApproveBooking godoc
// @Summary  Approve a pending booking and charge the tenant
// @Tags     bookings
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "booking id"
// @Success  200 {object} response.Response
// @Failure  403 {object} response.ErrorResponse
// @Failure  404 {object} response.ErrorResponse
// @Failure  422 {object} response.ErrorResponse
// @Router   /bookings/{id}/approve [post]
func (ctl *BookingController) ApproveBooking(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	booking, rejected, err := ctl.bookings.Approve(c.Request.Context(), p, id)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Success(c, "booking confirmed", dto.ApproveBookingResponse{
		Booking:      dto.NewBookingResponse(booking),
		AutoRejected: rejected,
	})
}

// RejectBooking godoc
// @Summary  Reject a pending booking
// @Tags     bookings
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path int               true  "booking id"
// @Param    body body dto.RejectRequest false "reason"
// @Success  200 {object} response.Response
// @Router   /bookings/{id}/reject [post]
func (ctl *BookingController) RejectBooking(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.RejectRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	booking, err := ctl.bookings.Reject(c.Request.Context(), p, id, req.Reason)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Success(c, "booking rejected", dto.NewBookingResponse(booking))
}

func (ctl *BookingController) CancelBooking(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	booking, err := ctl.bookings.Cancel(c.Request.Context(), p, id)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Success(c, "booking cancelled", dto.NewBookingResponse(booking))
}

func (ctl *BookingController) GetBooking(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	booking, err := ctl.bookings.Get(c.Request.Context(), p, id)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Success(c, "ok", dto.NewBookingResponse(booking))
}

// ListMyBookings lists the caller's bookings, filtered by ?status.
func (ctl *BookingController) ListMyBookings(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	page := utils.ParsePage(c)
	bookings, total, err := ctl.bookings.ListForTenant(c.Request.Context(), p, c.Query("status"), page)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.SuccessWithPagination(c, dto.NewBookingResponses(bookings), page.Page, page.Limit, total)
}

// ListLandlordBookings lists bookings on the caller's apartments.
func (ctl *BookingController) ListLandlordBookings(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	page := utils.ParsePage(c)
	bookings, total, err := ctl.bookings.ListForLandlord(c.Request.Context(), p, c.Query("status"), page)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.SuccessWithPagination(c, dto.NewBookingResponses(bookings), page.Page, page.Limit, total)
}

// BookedDates godoc
// @Summary  Confirmed date ranges of an apartment
// @Tags     apartments
// @Produce  json
// @Param    id path int true "apartment id"
// @Success  200 {object} response.Response
// @Failure  404 {object} response.ErrorResponse
// @Router   /apartments/{id}/booked-dates [get]
func (ctl *BookingController) BookedDates(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ranges, err := ctl.bookings.BookedDates(c.Request.Context(), id)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Success(c, "ok", ranges)
}

// ReviewBooking godoc
// @Summary  Review a completed booking
// @Tags     reviews
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path int                     true "booking id"
// @Param    body body dto.CreateReviewRequest true "review"
// @Success  201 {object} response.Response
// @Failure  422 {object} response.ErrorResponse
// @Router   /bookings/{id}/review [post]
func (ctl *BookingController) ReviewBooking(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	review, err := ctl.reviews.Create(c.Request.Context(), p, id, req)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Created(c, "review submitted", dto.NewReviewResponse(review))
}
