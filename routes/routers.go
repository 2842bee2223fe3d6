package routes

import (
	"net/http"

	"rentspace/constants"
	"rentspace/controllers"
	_ "rentspace/docs"
	"rentspace/middleware"
	"rentspace/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func SetupRoutes(router *gin.Engine, svc *services.Services, log zerolog.Logger) {
	authController := controllers.NewAuthController(svc.Auth, log)
	apartmentController := controllers.NewApartmentController(svc.Apartments, svc.Reviews, log)
	bookingController := controllers.NewBookingController(svc.Bookings, svc.Reviews, log)
	walletController := controllers.NewWalletController(svc.Wallet, svc.WalletRequests, log)
	applicationController := controllers.NewRentalApplicationController(svc.Applications, log)
	adminController := controllers.NewAdminController(controllers.AdminControllerOptions{
		Users:          svc.Users,
		Apartments:     svc.Apartments,
		WalletRequests: svc.WalletRequests,
		Logger:         log,
	})

	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authed := middleware.AuthMiddleware(svc.Tokens)
	tenant := middleware.AuthMiddleware(svc.Tokens, constants.RoleTenant)
	landlord := middleware.AuthMiddleware(svc.Tokens, constants.RoleLandlord)
	admin := middleware.AuthMiddleware(svc.Tokens, constants.RoleAdmin)
	member := middleware.AuthMiddleware(svc.Tokens, constants.RoleTenant, constants.RoleLandlord)

	v1 := router.Group("/api/v1")
	v1.POST("/auth/register", authController.Register)
	v1.POST("/auth/login", authController.Login)
	v1.GET("/me", authed, authController.Me)

	v1.GET("/apartments", apartmentController.ListApartments)
	v1.GET("/apartments/:id", middleware.OptionalAuth(svc.Tokens), apartmentController.GetApartment)
	v1.GET("/apartments/:id/booked-dates", bookingController.BookedDates)
	v1.GET("/apartments/:id/reviews", apartmentController.ListReviews)
	v1.POST("/apartments", landlord, apartmentController.CreateApartment)
	v1.PUT("/apartments/:id", landlord, apartmentController.UpdateApartment)
	v1.PATCH("/apartments/:id/availability", landlord, apartmentController.SetAvailability)

	v1.POST("/bookings", tenant, bookingController.CreateBooking)
	v1.GET("/bookings", tenant, bookingController.ListMyBookings)
	v1.GET("/bookings/:id", authed, bookingController.GetBooking)
	v1.POST("/bookings/:id/approve", landlord, bookingController.ApproveBooking)
	v1.POST("/bookings/:id/reject", landlord, bookingController.RejectBooking)
	v1.POST("/bookings/:id/cancel", tenant, bookingController.CancelBooking)
	v1.POST("/bookings/:id/review", tenant, bookingController.ReviewBooking)

	v1.GET("/wallet", member, walletController.GetWallet)
	v1.GET("/wallet/transactions", member, walletController.ListTransactions)
	v1.POST("/wallet/deposit-request", member, walletController.RequestDeposit)
	v1.POST("/wallet/withdrawal-request", member, walletController.RequestWithdrawal)
	v1.GET("/wallet/requests", member, walletController.ListMyRequests)

	v1.POST("/rental-applications", tenant, applicationController.SubmitApplication)
	v1.GET("/rental-applications", tenant, applicationController.ListMyApplications)
	v1.GET("/rental-applications/:id", authed, applicationController.GetApplication)
	v1.POST("/rental-applications/:id/approve", landlord, applicationController.ApproveApplication)
	v1.POST("/rental-applications/:id/reject", landlord, applicationController.RejectApplication)
	v1.POST("/rental-applications/:id/modifications", tenant, applicationController.ProposeModification)
	v1.POST("/rental-applications/:id/modifications/:modificationId/approve", landlord, applicationController.ApproveModification)
	v1.POST("/rental-applications/:id/modifications/:modificationId/reject", landlord, applicationController.RejectModification)

	landlordGroup := v1.Group("/landlord", landlord)
	landlordGroup.GET("/apartments", apartmentController.ListMyApartments)
	landlordGroup.GET("/bookings", bookingController.ListLandlordBookings)
	landlordGroup.GET("/rental-applications", applicationController.ListLandlordApplications)

	adminGroup := v1.Group("/admin", admin)
	adminGroup.GET("/users", adminController.ListUsers)
	adminGroup.POST("/users/:id/approve", adminController.ApproveUser)
	adminGroup.POST("/users/:id/reject", adminController.RejectUser)
	adminGroup.GET("/apartments", adminController.ListApartments)
	adminGroup.POST("/apartments/:id/approve", adminController.ApproveApartment)
	adminGroup.POST("/apartments/:id/reject", adminController.RejectApartment)
	adminGroup.GET("/wallet-requests", adminController.ListWalletRequests)
	adminGroup.POST("/wallet-requests/:id/approve", adminController.ApproveWalletRequest)
	adminGroup.POST("/wallet-requests/:id/reject", adminController.RejectWalletRequest)
}
