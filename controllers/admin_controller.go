package controllers

import (
	"rentspace/dto"
	"rentspace/response"
	"rentspace/services"
	"rentspace/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AdminController serves the approval queues for users, listings and
// wallet requests.
type AdminController struct {
	users      *services.UserService
	apartments *services.ApartmentService
	requests   *services.WalletRequestService
	logger     zerolog.Logger
}

type AdminControllerOptions struct {
	Users          *services.UserService
	Apartments     *services.ApartmentService
	WalletRequests *services.WalletRequestService
	Logger         zerolog.Logger
}

func NewAdminController(opts AdminControllerOptions) *AdminController {
	return &AdminController{
		users:      opts.Users,
		apartments: opts.Apartments,
		requests:   opts.WalletRequests,
		logger:     opts.Logger,
	}
}

// ListUsers godoc
// @Summary  List users by status and role
// @Tags     admin
// @Produce  json
// @Security BearerAuth
// @Param    status query string false "pending | approved | rejected"
// @Param    role   query string false "tenant | landlord | admin"
// @Success  200 {object} response.Response
// @Router   /admin/users [get]
func (ctl *AdminController) ListUsers(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	page := utils.ParsePage(c)
	users, total, err := ctl.users.List(c.Request.Context(), p, c.Query("status"), c.Query("role"), page)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.SuccessWithPagination(c, dto.NewUserResponses(users), page.Page, page.Limit, total)
}

func (ctl *AdminController) ApproveUser(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := ctl.users.Approve(c.Request.Context(), p, id)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Success(c, "user approved", dto.NewUserResponse(user))
}

func (ctl *AdminController) RejectUser(c *gin.Context) {
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
	user, err := ctl.users.Reject(c.Request.Context(), p, id, req.Reason)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Success(c, "user rejected", dto.NewUserResponse(user))
}

func (ctl *AdminController) ListApartments(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	page := utils.ParsePage(c)
	rows, total, err := ctl.apartments.ListByStatus(c.Request.Context(), p, c.Query("status"), page)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.SuccessWithPagination(c, dto.NewApartmentResponses(rows, services.USDToSPY), page.Page, page.Limit, total)
}

func (ctl *AdminController) ApproveApartment(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	apt, err := ctl.apartments.Approve(c.Request.Context(), p, id)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Success(c, "apartment approved", dto.NewApartmentResponse(apt, services.USDToSPY))
}

func (ctl *AdminController) RejectApartment(c *gin.Context) {
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
	apt, err := ctl.apartments.Reject(c.Request.Context(), p, id, req.Reason)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Success(c, "apartment rejected", dto.NewApartmentResponse(apt, services.USDToSPY))
}

func (ctl *AdminController) ListWalletRequests(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	page := utils.ParsePage(c)
	rows, total, err := ctl.requests.List(c.Request.Context(), p, c.Query("status"), c.Query("type"), page)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.SuccessWithPagination(c, dto.NewWalletRequestResponses(rows, services.SPYToUSD), page.Page, page.Limit, total)
}

// ApproveWalletRequest godoc
// @Summary  Apply a deposit or withdrawal request to the wallet
// @Tags     admin
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "request id"
// @Success  200 {object} response.Response
// @Failure  422 {object} response.ErrorResponse
// @Router   /admin/wallet-requests/{id}/approve [post]
func (ctl *AdminController) ApproveWalletRequest(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := ctl.requests.Approve(c.Request.Context(), p, id)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Success(c, "request approved", dto.NewWalletRequestResponse(r, services.SPYToUSD))
}

func (ctl *AdminController) RejectWalletRequest(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.RequiredReasonRequest
	if !bindJSON(c, &req) {
		return
	}
	r, err := ctl.requests.Reject(c.Request.Context(), p, id, req.Reason)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Success(c, "request rejected", dto.NewWalletRequestResponse(r, services.SPYToUSD))
}
