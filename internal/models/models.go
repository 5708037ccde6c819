package models

import (
	"fmt"
	"strings"
	"time"
)

// FlexibleBool accepts booleans encoded as strings or numbers
type FlexibleBool bool

func (fb *FlexibleBool) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)

	switch strings.ToLower(str) {
	case "true", "1", "yes", "on":
		*fb = true
	case "false", "0", "no", "off":
		*fb = false
	default:
		return fmt.Errorf("invalid boolean value: %s", str)
	}
	return nil
}

func (fb FlexibleBool) Bool() bool {
	return bool(fb)
}

// RegisterRequest - регистрация пользователя
type RegisterRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	FullName string  `json:"full_name" binding:"required"`
	Phone    *string `json:"phone,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

type CreateRoomRequest struct {
	Number      string   `json:"number" binding:"required"`
	Type        string   `json:"type" binding:"required"`
	Price       int64    `json:"price" binding:"required,gt=0"`
	Capacity    int      `json:"capacity" binding:"required,gt=0"`
	Description *string  `json:"description,omitempty"`
	Amenities   []string `json:"amenities,omitempty"`
}

type SetMaintenanceRequest struct {
	Maintenance FlexibleBool `json:"maintenance"`
}

// RoomFilter narrows room listings and searches
type RoomFilter struct {
	Query       string
	Type        string
	MinCapacity int
	MaxPrice    int64
	Status      RoomStatus
	Page        int
	PageSize    int
}

type AvailabilityResponse struct {
	RoomID    int64     `json:"room_id"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	Available bool      `json:"available"`
}

type CreateServiceRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
	Price       int64   `json:"price" binding:"required,gt=0"`
}

// ServiceLine is a requested add-on on a booking
type ServiceLine struct {
	ServiceID int64 `json:"service_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required"`
}

// CreateBookingRequest - модель для создания бронирования
type CreateBookingRequest struct {
	UserID          int64         `json:"user_id,omitempty"`
	RoomID          int64         `json:"room_id" binding:"required"`
	CheckIn         time.Time     `json:"check_in" binding:"required"`
	CheckOut        time.Time     `json:"check_out" binding:"required"`
	Guests          int           `json:"guests" binding:"required"`
	SpecialRequests *string       `json:"special_requests,omitempty"`
	PaymentMethod   string        `json:"payment_method" binding:"required,payment_method"`
	Services        []ServiceLine `json:"services,omitempty"`
}

type TransitionRequest struct {
	Status string `json:"status" binding:"required,booking_status"`
}

type AddServiceRequest struct {
	ServiceID int64 `json:"service_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required"`
}

type ValidatePromoRequest struct {
	Code     string `json:"code" binding:"required"`
	Subtotal int64  `json:"subtotal" binding:"gte=0"`
}

type ValidatePromoResponse struct {
	Valid          bool   `json:"valid"`
	Code           string `json:"code"`
	DiscountAmount int64  `json:"discount_amount"`
}

type ApplyPromoRequest struct {
	Code      string `json:"code" binding:"required"`
	BookingID int64  `json:"booking_id" binding:"required"`
}

type CreatePromoRequest struct {
	Code          string       `json:"code" binding:"required"`
	Description   *string      `json:"description,omitempty"`
	DiscountType  DiscountType `json:"discount_type" binding:"required,oneof=percentage fixed"`
	DiscountValue int64        `json:"discount_value" binding:"required,gt=0"`
	MaxDiscount   *int64       `json:"max_discount,omitempty"`
	MinAmount     int64        `json:"min_amount" binding:"gte=0"`
	ValidFrom     time.Time    `json:"valid_from" binding:"required"`
	ValidTo       time.Time    `json:"valid_to" binding:"required"`
	UsageLimit    int          `json:"usage_limit" binding:"required,gt=0"`
	PerUserLimit  int          `json:"per_user_limit" binding:"gte=0"`
}

type RedeemPointsRequest struct {
	RewardID string `json:"reward_id" binding:"required"`
	Points   int64  `json:"points" binding:"required"`
}

type SubmitReviewRequest struct {
	BookingID int64   `json:"booking_id" binding:"required"`
	Rating    int     `json:"rating"`
	Title     *string `json:"title,omitempty"`
	Comment   *string `json:"comment,omitempty"`
}

// Dashboard - сводка для админ-панели
type Dashboard struct {
	RoomsByStatus    map[RoomStatus]int    `json:"rooms_by_status"`
	BookingsByStatus map[BookingStatus]int `json:"bookings_by_status"`
	CurrentGuests    int                   `json:"current_guests"`
	GeneratedAt      time.Time             `json:"generated_at"`
}

// ErrorBody is the JSON error envelope
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
