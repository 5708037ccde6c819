package models

import "time"

// NATS Event Types
const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
	EventPromotionRedeemed    = "promotion.redeemed"
	EventPointsEarned         = "points.earned"
	EventReviewSubmitted      = "review.submitted"
	EventRoomUpdated          = "room.updated"
)

type BookingCreatedEvent struct {
	BookingID  int64     `json:"booking_id"`
	RoomID     int64     `json:"room_id"`
	UserID     int64     `json:"user_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	TotalPrice int64     `json:"total_price"`
	Timestamp  time.Time `json:"timestamp"`
}

type BookingStatusChangedEvent struct {
	BookingID int64         `json:"booking_id"`
	RoomID    int64         `json:"room_id"`
	UserID    int64         `json:"user_id"`
	From      BookingStatus `json:"from"`
	To        BookingStatus `json:"to"`
	Timestamp time.Time     `json:"timestamp"`
}

type PromotionRedeemedEvent struct {
	PromoCodeID    int64     `json:"promo_code_id"`
	BookingID      int64     `json:"booking_id"`
	UserID         int64     `json:"user_id"`
	DiscountAmount int64     `json:"discount_amount"`
	Timestamp      time.Time `json:"timestamp"`
}

type PointsEarnedEvent struct {
	UserID    int64     `json:"user_id"`
	BookingID int64     `json:"booking_id"`
	Points    int64     `json:"points"`
	Level     Level     `json:"level"`
	Timestamp time.Time `json:"timestamp"`
}

type ReviewSubmittedEvent struct {
	ReviewID  int64     `json:"review_id"`
	BookingID int64     `json:"booking_id"`
	RoomID    int64     `json:"room_id"`
	Rating    int       `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}

type RoomUpdatedEvent struct {
	RoomID    int64      `json:"room_id"`
	Status    RoomStatus `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
}
