package handlers

import (
	"net/http"

	"hotelier/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateBooking - POST /api/bookings
// Admins may book on behalf of another user by setting user_id.
func (h *Handlers) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	s := currentSession(c)
	if req.UserID == 0 || !s.IsAdmin() {
		req.UserID = s.UserID
	}

	booking, err := h.services.Bookings.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "create booking", err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// ListBookings - GET /api/bookings
func (h *Handlers) ListBookings(c *gin.Context) {
	bookings, err := h.services.Bookings.ListForUser(c.Request.Context(), currentSession(c).UserID)
	if err != nil {
		respondError(c, "list bookings", err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// GetBooking - GET /api/bookings/:id
func (h *Handlers) GetBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	booking, ok := h.authorizeBooking(c, id)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, booking)
}

// TransitionBooking - PATCH /api/bookings/:id/status
// Guests may only cancel their own bookings; payment and stay transitions are
// staff operations.
func (h *Handlers) TransitionBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if _, ok := h.authorizeBooking(c, id); !ok {
		return
	}
	if s := currentSession(c); !s.IsAdmin() && req.Status != string(models.BookingCancelled) {
		writeForbidden(c)
		return
	}

	booking, err := h.services.Bookings.Transition(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, "transition booking", err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// AddBookingService - POST /api/bookings/:id/services
func (h *Handlers) AddBookingService(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.AddServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if _, ok := h.authorizeBooking(c, id); !ok {
		return
	}

	booking, err := h.services.AddOns.AddToBooking(c.Request.Context(), id, req.ServiceID, req.Quantity)
	if err != nil {
		respondError(c, "add service", err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// GenerateInvoice - POST /api/bookings/:id/invoice
func (h *Handlers) GenerateInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.authorizeBooking(c, id); !ok {
		return
	}

	invoice, err := h.services.Invoices.Generate(c.Request.Context(), id)
	if err != nil {
		respondError(c, "generate invoice", err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// GetInvoice - GET /api/bookings/:id/invoice
func (h *Handlers) GetInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.authorizeBooking(c, id); !ok {
		return
	}

	invoice, err := h.services.Invoices.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "get invoice", err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}
