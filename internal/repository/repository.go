package repository

import (
	"hotelier/internal/database"
)

type Repositories struct {
	Users      *UserRepository
	Rooms      *RoomRepository
	Bookings   *BookingRepository
	Services   *ServiceRepository
	Reviews    *ReviewRepository
	Loyalty    *LoyaltyRepository
	Promotions *PromotionRepository
	Invoices   *InvoiceRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Users:      NewUserRepository(db),
		Rooms:      NewRoomRepository(db),
		Bookings:   NewBookingRepository(db),
		Services:   NewServiceRepository(db),
		Reviews:    NewReviewRepository(db),
		Loyalty:    NewLoyaltyRepository(db),
		Promotions: NewPromotionRepository(db),
		Invoices:   NewInvoiceRepository(db),
	}
}
