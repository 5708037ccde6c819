package handlers

import (
	"net/http"

	"hotelier/internal/models"

	"github.com/gin-gonic/gin"
)

// Register - POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.services.Users.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "register user", err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login - POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.services.Users.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "log in", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Logout - POST /api/auth/logout
func (h *Handlers) Logout(c *gin.Context) {
	s := currentSession(c)
	if err := h.services.Users.Logout(c.Request.Context(), s.ID); err != nil {
		respondError(c, "log out", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me - GET /api/auth/me
func (h *Handlers) Me(c *gin.Context) {
	user, err := h.services.Users.Get(c.Request.Context(), currentSession(c).UserID)
	if err != nil {
		respondError(c, "get user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}
