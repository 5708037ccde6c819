package handlers

import (
	"hotelier/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Routes mounts the API under api. auth must load the session into the
// request context.
func (h *Handlers) Routes(api *gin.RouterGroup, auth gin.HandlerFunc) {
	admin := middleware.RequireAdmin()

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", auth, h.Logout)
		authGroup.GET("/me", auth, h.Me)
	}

	rooms := api.Group("/rooms")
	{
		rooms.GET("", h.ListRooms)
		rooms.GET("/search", h.SearchRooms)
		rooms.GET("/:id", h.GetRoom)
		rooms.GET("/:id/availability", h.RoomAvailability)
		rooms.GET("/:id/rating", h.RoomRating)
		rooms.GET("/:id/reviews", h.RoomReviews)
		rooms.POST("", auth, admin, h.CreateRoom)
		rooms.PATCH("/:id/maintenance", auth, admin, h.SetMaintenance)
	}

	services := api.Group("/services")
	{
		services.GET("", h.ListServices)
		services.POST("", auth, admin, h.CreateService)
	}

	bookings := api.Group("/bookings", auth)
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id/status", h.TransitionBooking)
		bookings.POST("/:id/services", h.AddBookingService)
		bookings.POST("/:id/invoice", h.GenerateInvoice)
		bookings.GET("/:id/invoice", h.GetInvoice)
	}

	promotions := api.Group("/promotions", auth)
	{
		promotions.POST("/validate", h.ValidatePromo)
		promotions.POST("/apply", h.ApplyPromo)
		promotions.POST("", admin, h.CreatePromo)
	}

	loyalty := api.Group("/loyalty", auth)
	{
		loyalty.GET("", h.LoyaltyBalance)
		loyalty.GET("/history", h.LoyaltyHistory)
		loyalty.POST("/redeem", h.RedeemPoints)
	}

	api.POST("/reviews", auth, h.SubmitReview)
	api.GET("/admin/dashboard", auth, admin, h.Dashboard)
}
