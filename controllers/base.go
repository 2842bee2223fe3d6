package controllers

import (
	"context"

	apperr "rentspace/errors"
	"rentspace/middleware"
	"rentspace/models"
	"rentspace/response"
	"rentspace/types"
	"rentspace/utils"
	"rentspace/validator"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// bindJSON decodes the body into req and writes a 422 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if fields := validator.FieldErrors(err); fields != nil {
			response.ValidationError(c, fields)
		} else {
			response.BadRequest(c, "request body is not valid JSON")
		}
		return false
	}
	return true
}

// bindOptionalJSON accepts an empty body.
func bindOptionalJSON(c *gin.Context, req interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return bindJSON(c, req)
}

func principal(c *gin.Context) (types.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Unauthorized(c)
	}
	return p, ok
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, ok := utils.ParseID(c, name)
	if !ok {
		response.ValidationError(c, map[string]string{name: "must be a positive integer"})
	}
	return id, ok
}

// fail writes err to the client. Unexpected errors are logged with their
// cause and answered with a generic 500.
func fail(c *gin.Context, log zerolog.Logger, err error) {
	appErr := apperr.GetAppError(err)
	if appErr == nil || appErr.Code == apperr.ErrCodeInternal {
		log.Error().Err(err).
			Str("route", c.FullPath()).
			Str("request_id", c.Writer.Header().Get(middleware.RequestIDHeader)).
			Msg("request failed")
	}
	response.Error(c, err)
}

type modificationDecision = func(ctx context.Context, p types.Principal, appID, modID uint) (*models.RentalApplication, error)
