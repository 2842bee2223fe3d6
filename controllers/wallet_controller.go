package controllers

import (
	"context"

	"rentspace/dto"
	"rentspace/models"
	"rentspace/response"
	"rentspace/services"
	"rentspace/types"
	"rentspace/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type WalletController struct {
	wallet   *services.WalletService
	requests *services.WalletRequestService
	logger   zerolog.Logger
}

func NewWalletController(wallet *services.WalletService, requests *services.WalletRequestService, logger zerolog.Logger) *WalletController {
	return &WalletController{wallet: wallet, requests: requests, logger: logger}
}

// GetWallet godoc
// @Summary  Wallet balance in SPY and USD
// @Tags     wallet
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} response.Response
// @Router   /wallet [get]
func (ctl *WalletController) GetWallet(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	w, err := ctl.wallet.Get(c.Request.Context(), p.UserID)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Success(c, "ok", dto.WalletResponse{
		UserID:     w.UserID,
		BalanceSPY: w.Balance,
		BalanceUSD: services.SPYToUSD(w.Balance),
	})
}

func (ctl *WalletController) ListTransactions(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	page := utils.ParsePage(c)
	rows, total, err := ctl.wallet.Transactions(c.Request.Context(), p.UserID, c.Query("type"), page)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.SuccessWithPagination(c, dto.NewWalletTransactionResponses(rows), page.Page, page.Limit, total)
}

// RequestDeposit godoc
// @Summary  Ask an admin to credit the wallet
// @Tags     wallet
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body dto.WalletAmountRequest true "amount in USD"
// @Success  201 {object} response.Response
// @Router   /wallet/deposit-request [post]
func (ctl *WalletController) RequestDeposit(c *gin.Context) {
	ctl.createRequest(c, ctl.requests.CreateDeposit)
}

// RequestWithdrawal godoc
// @Summary  Ask an admin to pay out from the wallet
// @Tags     wallet
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body dto.WalletAmountRequest true "amount in USD"
// @Success  201 {object} response.Response
// @Failure  422 {object} response.ErrorResponse
// @Router   /wallet/withdrawal-request [post]
func (ctl *WalletController) RequestWithdrawal(c *gin.Context) {
	ctl.createRequest(c, ctl.requests.CreateWithdrawal)
}

type createWalletRequestFunc = func(ctx context.Context, p types.Principal, amountUSD float64) (*models.WalletRequest, error)

func (ctl *WalletController) createRequest(c *gin.Context, create createWalletRequestFunc) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req dto.WalletAmountRequest
	if !bindJSON(c, &req) {
		return
	}
	r, err := create(c.Request.Context(), p, req.AmountUSD)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Created(c, "request submitted", dto.NewWalletRequestResponse(r, services.SPYToUSD))
}

func (ctl *WalletController) ListMyRequests(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	page := utils.ParsePage(c)
	rows, total, err := ctl.requests.ListMine(c.Request.Context(), p, page)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.SuccessWithPagination(c, dto.NewWalletRequestResponses(rows, services.SPYToUSD), page.Page, page.Limit, total)
}
