package config

import (
	"fmt"

	"rentspace/middleware"
	"rentspace/validator"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// InitApp builds the gin engine with the shared middleware chain.
func InitApp(cfg *Config, log zerolog.Logger) (*gin.Engine, error) {
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validator.RegisterBindings(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}
	router := gin.New()

	configCors := cors.DefaultConfig()
	configCors.AddAllowHeaders("Authorization", middleware.RequestIDHeader)
	configCors.AddExposeHeaders(middleware.RequestIDHeader)
	configCors.AllowCredentials = true
	if len(cfg.Server.CORSAllowedOrigins) > 0 {
		configCors.AllowOrigins = cfg.Server.CORSAllowedOrigins
	} else {
		configCors.AllowOriginFunc = func(origin string) bool {
			return true
		}
	}

	router.Use(
		middleware.RequestID(),
		middleware.AccessLog(log),
		middleware.Recovery(log),
		cors.New(configCors),
	)
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, err
	}
	return router, nil
}
