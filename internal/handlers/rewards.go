package handlers

import (
	"net/http"

	"hotelier/internal/models"

	"github.com/gin-gonic/gin"
)

// ValidatePromo - POST /api/promotions/validate
func (h *Handlers) ValidatePromo(c *gin.Context) {
	var req models.ValidatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.services.Promotions.ValidateCode(c.Request.Context(), req.Code, req.Subtotal)
	if err != nil {
		respondError(c, "validate promotional code", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ApplyPromo - POST /api/promotions/apply
func (h *Handlers) ApplyPromo(c *gin.Context) {
	var req models.ApplyPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if _, ok := h.authorizeBooking(c, req.BookingID); !ok {
		return
	}

	booking, err := h.services.Promotions.ApplyToBooking(c.Request.Context(), req.Code, req.BookingID)
	if err != nil {
		respondError(c, "apply promotional code", err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// CreatePromo - POST /api/promotions (admin)
func (h *Handlers) CreatePromo(c *gin.Context) {
	var req models.CreatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	promo, err := h.services.Promotions.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "create promotional code", err)
		return
	}
	c.JSON(http.StatusCreated, promo)
}

// LoyaltyBalance - GET /api/loyalty
func (h *Handlers) LoyaltyBalance(c *gin.Context) {
	balance, err := h.services.Loyalty.Balance(c.Request.Context(), currentSession(c).UserID)
	if err != nil {
		respondError(c, "get loyalty balance", err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

// LoyaltyHistory - GET /api/loyalty/history
func (h *Handlers) LoyaltyHistory(c *gin.Context) {
	history, err := h.services.Loyalty.History(c.Request.Context(), currentSession(c).UserID)
	if err != nil {
		respondError(c, "get loyalty history", err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// RedeemPoints - POST /api/loyalty/redeem
func (h *Handlers) RedeemPoints(c *gin.Context) {
	var req models.RedeemPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	balance, err := h.services.Loyalty.Redeem(c.Request.Context(), currentSession(c).UserID, req.RewardID, req.Points)
	if err != nil {
		respondError(c, "redeem points", err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

// SubmitReview - POST /api/reviews
func (h *Handlers) SubmitReview(c *gin.Context) {
	var req models.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if _, ok := h.authorizeBooking(c, req.BookingID); !ok {
		return
	}

	review, err := h.services.Reviews.Submit(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "submit review", err)
		return
	}
	c.JSON(http.StatusCreated, review)
}
