package controllers

import (
	"rentspace/dto"
	"rentspace/response"
	"rentspace/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type AuthController struct {
	auth   *services.AuthService
	logger zerolog.Logger
}

func NewAuthController(auth *services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{auth: auth, logger: logger}
}

// Register godoc
// @Summary  Register a tenant or landlord account
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body dto.RegisterRequest true "account details"
// @Success  201 {object} response.Response
// @Failure  422 {object} response.ErrorResponse
// @Router   /auth/register [post]
func (ctl *AuthController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := ctl.auth.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Created(c, "registration received, awaiting admin approval", dto.NewUserResponse(user))
}

// Login godoc
// @Summary  Log in with phone and password
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body dto.LoginRequest true "credentials"
// @Success  200 {object} response.Response
// @Failure  401 {object} response.ErrorResponse
// @Failure  403 {object} response.ErrorResponse
// @Router   /auth/login [post]
func (ctl *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	token, expiresAt, user, err := ctl.auth.Login(c.Request.Context(), req)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Success(c, "logged in", dto.LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		User:      dto.NewUserResponse(user),
	})
}

// Me returns the caller's account.
func (ctl *AuthController) Me(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	user, err := ctl.auth.Me(c.Request.Context(), p)
	if err != nil {
		fail(c, ctl.logger, err)
		return
	}
	response.Success(c, "ok", dto.NewUserResponse(user))
}
