package controllers

import (
	"rentspace/dto"
	"rentspace/response"
	"rentspace/services"
	"rentspace/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type RentalApplicationController struct {
	applications *services.RentalApplicationService
	logger       zerolog.Logger
}

func NewRentalApplicationController(applications *services.RentalApplicationService, logger zerolog.Logger) *RentalApplicationController {
	return &RentalApplicationController{applications: applications, logger: logger}
}

// SubmitApplication godoc
// @Summary  Apply to rent an apartment
// @Tags     rental-applications
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body dto.RentalApplicationRequest true "application"
// @Success  201 {object} response.Response
// @Failure  422 {object} response.ErrorResponse
// @Router   /rental-applications [post]
func (ctl *RentalApplicationController) SubmitApplication(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req dto.RentalApplicationRequest
	if !bindJSON(c, &req) {
		return
	}
	app, err := ctl.applications.Submit(c.Request.Context(), p, req)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Created(c, "application submitted", dto.NewRentalApplicationResponse(app))
}

func (ctl *RentalApplicationController) GetApplication(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	app, err := ctl.applications.Get(c.Request.Context(), p, id)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Success(c, "ok", dto.NewRentalApplicationResponse(app))
}

func (ctl *RentalApplicationController) ListMyApplications(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	page := utils.ParsePage(c)
	rows, total, err := ctl.applications.ListForTenant(c.Request.Context(), p, c.Query("status"), page)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.SuccessWithPagination(c, dto.NewRentalApplicationResponses(rows), page.Page, page.Limit, total)
}

func (ctl *RentalApplicationController) ListLandlordApplications(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	page := utils.ParsePage(c)
	rows, total, err := ctl.applications.ListForLandlord(c.Request.Context(), p, c.Query("status"), page)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.SuccessWithPagination(c, dto.NewRentalApplicationResponses(rows), page.Page, page.Limit, total)
}

// ApproveApplication godoc
// @Summary  Approve an application and confirm its booking
// @Tags     rental-applications
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "application id"
// @Success  200 {object} response.Response
// @Failure  422 {object} response.ErrorResponse
// @Router   /rental-applications/{id}/approve [post]
func (ctl *RentalApplicationController) ApproveApplication(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	app, err := ctl.applications.Approve(c.Request.Context(), p, id)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Success(c, "application approved", dto.NewRentalApplicationResponse(app))
}

func (ctl *RentalApplicationController) RejectApplication(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	app, err := ctl.applications.Reject(c.Request.Context(), p, id)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Success(c, "application rejected", dto.NewRentalApplicationResponse(app))
}

// ProposeModification godoc
// @Summary  Propose new dates or message for an application
// @Tags     rental-applications
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path int                     true "application id"
// @Param    body body dto.ModificationRequest true "modification"
// @Success  201 {object} response.Response
// @Failure  422 {object} response.ErrorResponse
// @Router   /rental-applications/{id}/modifications [post]
func (ctl *RentalApplicationController) ProposeModification(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ModificationRequest
	if !bindJSON(c, &req) {
		return
	}
	app, _, err := ctl.applications.ProposeModification(c.Request.Context(), p, id, req)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Created(c, "modification proposed", dto.NewRentalApplicationResponse(app))
}

func (ctl *RentalApplicationController) ApproveModification(c *gin.Context) {
	ctl.decideModification(c, ctl.applications.ApproveModification, "modification approved")
}

func (ctl *RentalApplicationController) RejectModification(c *gin.Context) {
	ctl.decideModification(c, ctl.applications.RejectModification, "modification rejected")
}

func (ctl *RentalApplicationController) decideModification(c *gin.Context, decide modificationDecision, msg string) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	modID, ok := pathID(c, "modificationId")
	if !ok {
		return
	}
	app, err := decide(c.Request.Context(), p, id, modID)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Success(c, msg, dto.NewRentalApplicationResponse(app))
}
