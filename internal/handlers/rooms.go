package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"hotelier/internal/models"

	"github.com/gin-gonic/gin"
)

// roomFilter reads the listing query parameters.
func roomFilter(c *gin.Context) (models.RoomFilter, error) {
	filter := models.RoomFilter{
		Query:  c.Query("q"),
		Type:   c.Query("type"),
		Status: models.RoomStatus(c.Query("status")),
	}

	var err error
	if filter.Page, err = strconv.Atoi(c.DefaultQuery("page", "1")); err != nil || filter.Page < 1 {
		return filter, fmt.Errorf("page must be >= 1")
	}
	if filter.PageSize, err = strconv.Atoi(c.DefaultQuery("pageSize", "20")); err != nil || filter.PageSize < 1 || filter.PageSize > 100 {
		return filter, fmt.Errorf("pageSize must be between 1 and 100")
	}
	if v := c.Query("min_capacity"); v != "" {
		if filter.MinCapacity, err = strconv.Atoi(v); err != nil || filter.MinCapacity < 0 {
			return filter, fmt.Errorf("min_capacity must be a non-negative integer")
		}
	}
	if v := c.Query("max_price"); v != "" {
		if filter.MaxPrice, err = strconv.ParseInt(v, 10, 64); err != nil || filter.MaxPrice < 0 {
			return filter, fmt.Errorf("max_price must be a non-negative integer")
		}
	}
	return filter, nil
}

// ListRooms - GET /api/rooms
func (h *Handlers) ListRooms(c *gin.Context) {
	filter, err := roomFilter(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	rooms, err := h.services.Rooms.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "list rooms", err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// SearchRooms - GET /api/rooms/search
func (h *Handlers) SearchRooms(c *gin.Context) {
	filter, err := roomFilter(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	rooms, err := h.services.Rooms.Search(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "search rooms", err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// GetRoom - GET /api/rooms/:id
func (h *Handlers) GetRoom(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	room, err := h.services.Rooms.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "get room", err)
		return
	}
	c.JSON(http.StatusOK, room)
}

func parseDay(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

// RoomAvailability - GET /api/rooms/:id/availability?check_in=&check_out=
func (h *Handlers) RoomAvailability(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	checkIn, err := parseDay(c.Query("check_in"))
	if err != nil {
		badRequest(c, fmt.Errorf("check_in must be a date (YYYY-MM-DD) or RFC 3339 time"))
		return
	}
	checkOut, err := parseDay(c.Query("check_out"))
	if err != nil {
		badRequest(c, fmt.Errorf("check_out must be a date (YYYY-MM-DD) or RFC 3339 time"))
		return
	}

	available, err := h.services.Bookings.CheckAvailability(c.Request.Context(), id, checkIn, checkOut)
	if err != nil {
		respondError(c, "check availability", err)
		return
	}
	c.JSON(http.StatusOK, models.AvailabilityResponse{
		RoomID:    id,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Available: available,
	})
}

// RoomRating - GET /api/rooms/:id/rating
func (h *Handlers) RoomRating(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	rating, err := h.services.Reviews.RoomRating(c.Request.Context(), id)
	if err != nil {
		respondError(c, "get room rating", err)
		return
	}
	c.JSON(http.StatusOK, rating)
}

// RoomReviews - GET /api/rooms/:id/reviews
func (h *Handlers) RoomReviews(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	reviews, err := h.services.Reviews.ListForRoom(c.Request.Context(), id)
	if err != nil {
		respondError(c, "list reviews", err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// CreateRoom - POST /api/rooms (admin)
func (h *Handlers) CreateRoom(c *gin.Context) {
	var req models.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	room, err := h.services.Rooms.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "create room", err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

// SetMaintenance - PATCH /api/rooms/:id/maintenance (admin)
func (h *Handlers) SetMaintenance(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.SetMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	room, err := h.services.Rooms.SetMaintenance(c.Request.Context(), id, req.Maintenance.Bool())
	if err != nil {
		respondError(c, "update room", err)
		return
	}
	c.JSON(http.StatusOK, room)
}
