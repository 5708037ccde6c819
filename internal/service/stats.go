package service

import (
	"context"
	"fmt"
	"time"

	"hotelier/internal/models"
)

type StatsService struct {
	rooms    RoomStore
	bookings BookingStore
	now      func() time.Time
}

func NewStatsService(rooms RoomStore, bookings BookingStore, now func() time.Time) *StatsService {
	if now == nil {
		now = time.Now
	}
	return &StatsService{rooms: rooms, bookings: bookings, now: now}
}

// Dashboard summarizes occupancy. Current guests counts the party size of every
// confirmed booking whose window contains now.
func (s *StatsService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	now := s.now()

	rooms, err := s.rooms.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count rooms: %w", err)
	}
	bookings, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	guests, err := s.bookings.CurrentGuests(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count guests: %w", err)
	}

	return &models.Dashboard{
		RoomsByStatus:    rooms,
		BookingsByStatus: bookings,
		CurrentGuests:    guests,
		GeneratedAt:      now,
	}, nil
}
