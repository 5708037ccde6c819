package handlers

import (
	"net/http"

	apperrors "hotelier/internal/errors"
	"hotelier/internal/models"

	"github.com/gin-gonic/gin"
)

func writeForbidden(c *gin.Context) {
	writeError(c, http.StatusForbidden, apperrors.KindForbidden, apperrors.ErrForbidden.Message)
}

// ListServices - GET /api/services
func (h *Handlers) ListServices(c *gin.Context) {
	services, err := h.services.AddOns.List(c.Request.Context())
	if err != nil {
		respondError(c, "list services", err)
		return
	}
	c.JSON(http.StatusOK, services)
}

// CreateService - POST /api/services (admin)
func (h *Handlers) CreateService(c *gin.Context) {
	var req models.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	svc, err := h.services.AddOns.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "create service", err)
		return
	}
	c.JSON(http.StatusCreated, svc)
}

// Dashboard - GET /api/admin/dashboard
func (h *Handlers) Dashboard(c *gin.Context) {
	dashboard, err := h.services.Stats.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, "build dashboard", err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
