package models

import (
	"time"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// User represents a registered guest or staff member
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FullName     string    `json:"full_name" db:"full_name"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	Role         Role      `json:"role" db:"role"`
	IsVIP        bool      `json:"is_vip" db:"is_vip"`
	Preferences  []string  `json:"preferences" db:"preferences"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
}

// Room represents a physical unit that can be booked
type Room struct {
	ID          int64      `json:"id" db:"id"`
	Number      string     `json:"number" db:"number"`
	Type        string     `json:"type" db:"type"`
	Price       int64      `json:"price" db:"price"`
	Capacity    int        `json:"capacity" db:"capacity"`
	Status      RoomStatus `json:"status" db:"status"`
	Description *string    `json:"description,omitempty" db:"description"`
	Amenities   []string   `json:"amenities" db:"amenities"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Booking links one user to one room for a half-open [CheckIn, CheckOut) window
type Booking struct {
	ID              int64            `json:"id" db:"id"`
	UserID          int64            `json:"user_id" db:"user_id"`
	RoomID          int64            `json:"room_id" db:"room_id"`
	CheckIn         time.Time        `json:"check_in" db:"check_in"`
	CheckOut        time.Time        `json:"check_out" db:"check_out"`
	Guests          int              `json:"guests" db:"guests"`
	SpecialRequests *string          `json:"special_requests,omitempty" db:"special_requests"`
	PaymentMethod   PaymentMethod    `json:"payment_method" db:"payment_method"`
	PaymentStatus   string           `json:"payment_status" db:"payment_status"`
	RoomTotal       int64            `json:"room_total" db:"room_total"`
	ServicesTotal   int64            `json:"services_total" db:"services_total"`
	TotalPrice      int64            `json:"total_price" db:"total_price"`
	DiscountAmount  int64            `json:"discount_amount" db:"discount_amount"`
	Status          BookingStatus    `json:"status" db:"status"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at" db:"updated_at"`
	Services        []BookingService `json:"services,omitempty"` // Not from DB, filled separately
}

// Service is a priced add-on that can be attached to a booking
type Service struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	Price       int64     `json:"price" db:"price"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// BookingService represents the relationship between bookings and services
type BookingService struct {
	ID        int64     `json:"id" db:"id"`
	BookingID int64     `json:"booking_id" db:"booking_id"`
	ServiceID int64     `json:"service_id" db:"service_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	UnitPrice int64     `json:"unit_price" db:"unit_price"`
	AddedAt   time.Time `json:"added_at" db:"added_at"`
}

// Total returns quantity × unit price
func (bs BookingService) Total() int64 {
	return int64(bs.Quantity) * bs.UnitPrice
}

// Review is a guest rating of a completed booking
type Review struct {
	ID        int64     `json:"id" db:"id"`
	BookingID int64     `json:"booking_id" db:"booking_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	RoomID    int64     `json:"room_id" db:"room_id"`
	Rating    int       `json:"rating" db:"rating"`
	Title     *string   `json:"title,omitempty" db:"title"`
	Comment   *string   `json:"comment,omitempty" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// LoyaltyAccount is the materialized fold over a user's point transactions
type LoyaltyAccount struct {
	UserID        int64     `json:"user_id" db:"user_id"`
	CurrentPoints int64     `json:"current_points" db:"current_points"`
	TotalEarned   int64     `json:"total_earned" db:"total_earned"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// PointTransaction is an append-only ledger entry; Points is always positive
type PointTransaction struct {
	ID          int64                `json:"id" db:"id"`
	UserID      int64                `json:"user_id" db:"user_id"`
	Type        PointTransactionType `json:"type" db:"type"`
	Points      int64                `json:"points" db:"points"`
	BookingID   *int64               `json:"booking_id,omitempty" db:"booking_id"`
	RewardID    *string              `json:"reward_id,omitempty" db:"reward_id"`
	Description string               `json:"description" db:"description"`
	CreatedAt   time.Time            `json:"created_at" db:"created_at"`
}

// PromoCode is a discount rule with a validity window and a usage cap
type PromoCode struct {
	ID            int64        `json:"id" db:"id"`
	Code          string       `json:"code" db:"code"`
	Description   *string      `json:"description,omitempty" db:"description"`
	DiscountType  DiscountType `json:"discount_type" db:"discount_type"`
	DiscountValue int64        `json:"discount_value" db:"discount_value"`
	MaxDiscount   *int64       `json:"max_discount,omitempty" db:"max_discount"`
	MinAmount     int64        `json:"min_amount" db:"min_amount"`
	ValidFrom     time.Time    `json:"valid_from" db:"valid_from"`
	ValidTo       time.Time    `json:"valid_to" db:"valid_to"`
	UsageLimit    int          `json:"usage_limit" db:"usage_limit"`
	UsedCount     int          `json:"used_count" db:"used_count"`
	PerUserLimit  int          `json:"per_user_limit" db:"per_user_limit"`
	IsActive      bool         `json:"is_active" db:"is_active"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
}

// PromoCodeUsage is an append-only record of one redemption
type PromoCodeUsage struct {
	ID             int64     `json:"id" db:"id"`
	PromoCodeID    int64     `json:"promo_code_id" db:"promo_code_id"`
	UserID         int64     `json:"user_id" db:"user_id"`
	BookingID      int64     `json:"booking_id" db:"booking_id"`
	DiscountAmount int64     `json:"discount_amount" db:"discount_amount"`
	UsedAt         time.Time `json:"used_at" db:"used_at"`
}

// Invoice is the derived financial summary of a booking
type Invoice struct {
	ID             int64     `json:"id" db:"id"`
	InvoiceNumber  string    `json:"invoice_number" db:"invoice_number"`
	BookingID      int64     `json:"booking_id" db:"booking_id"`
	RoomTotal      int64     `json:"room_total" db:"room_total"`
	ServicesTotal  int64     `json:"services_total" db:"services_total"`
	TaxAmount      int64     `json:"tax_amount" db:"tax_amount"`
	DiscountAmount int64     `json:"discount_amount" db:"discount_amount"`
	TotalAmount    int64     `json:"total_amount" db:"total_amount"`
	IssuedAt       time.Time `json:"issued_at" db:"issued_at"`
}
