package controllers

import (
	"rentspace/dto"
	"rentspace/middleware"
	"rentspace/response"
	"rentspace/services"
	"rentspace/types"
	"rentspace/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type ApartmentController struct {
	apartments *services.ApartmentService
	reviews    *services.ReviewService
	logger     zerolog.Logger
}

func NewApartmentController(apartments *services.ApartmentService, reviews *services.ReviewService, logger zerolog.Logger) *ApartmentController {
	return &ApartmentController{apartments: apartments, reviews: reviews, logger: logger}
}

// ListApartments godoc
// @Summary  Search approved, available apartments
// @Tags     apartments
// @Produce  json
// @Param    q           query string false "free text"
// @Param    governorate query string false "governorate"
// @Param    city        query string false "city"
// @Param    min_price   query number false "minimum nightly price (USD)"
// @Param    max_price   query number false "maximum nightly price (USD)"
// @Param    page        query int    false "zero-based page"
// @Param    limit       query int    false "page size"
// @Success  200 {object} response.Response
// @Router   /apartments [get]
func (ctl *ApartmentController) ListApartments(c *gin.Context) {
	var filter dto.ApartmentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "invalid filter")
		return
	}
	page := utils.ParsePage(c)
	result, err := ctl.apartments.Search(c.Request.Context(), filter, page)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.SuccessWithPagination(c, dto.ApartmentSearchResponse{
		Apartments:  dto.NewApartmentResponses(result.Apartments, services.USDToSPY),
		Suggestions: result.Suggestions,
	}, page.Page, page.Limit, result.Total)
}

func (ctl *ApartmentController) GetApartment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var viewer *types.Principal
	if p, ok := middleware.PrincipalFrom(c); ok {
		viewer = &p
	}
	apt, err := ctl.apartments.Get(c.Request.Context(), id, viewer)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Success(c, "ok", dto.NewApartmentResponse(apt, services.USDToSPY))
}

func (ctl *ApartmentController) ListReviews(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	page := utils.ParsePage(c)
	reviews, total, err := ctl.reviews.ListForApartment(c.Request.Context(), id, page)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.SuccessWithPagination(c, dto.NewReviewResponses(reviews), page.Page, page.Limit, total)
}

func (ctl *ApartmentController) CreateApartment(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req dto.ApartmentRequest
	if !bindJSON(c, &req) {
		return
	}
	apt, err := ctl.apartments.Create(c.Request.Context(), p, req)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Created(c, "apartment submitted for review", dto.NewApartmentResponse(apt, services.USDToSPY))
}

func (ctl *ApartmentController) UpdateApartment(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ApartmentRequest
	if !bindJSON(c, &req) {
		return
	}
	apt, err := ctl.apartments.Update(c.Request.Context(), p, id, req)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Success(c, "apartment updated", dto.NewApartmentResponse(apt, services.USDToSPY))
}

func (ctl *ApartmentController) SetAvailability(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AvailabilityRequest
	if !bindJSON(c, &req) {
		return
	}
	apt, err := ctl.apartments.SetAvailability(c.Request.Context(), p, id, *req.IsAvailable)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Success(c, "availability updated", dto.NewApartmentResponse(apt, services.USDToSPY))
}

// ListMyApartments lists the caller's listings in every status.
func (ctl *ApartmentController) ListMyApartments(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	page := utils.ParsePage(c)
	rows, total, err := ctl.apartments.ListOwned(c.Request.Context(), p, page)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.SuccessWithPagination(c, dto.NewApartmentResponses(rows, services.USDToSPY), page.Page, page.Limit, total)
}
