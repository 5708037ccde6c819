package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "hotelier/internal/errors"
	"hotelier/internal/logger"
	"hotelier/internal/metrics"
	"hotelier/internal/models"
	"hotelier/internal/repository"
)

type BookingService struct {
	bookings      BookingStore
	rooms         RoomStore
	users         UserStore
	services      ServiceStore
	loyalty       *LoyaltyService
	publisher     Publisher
	pointsPerUnit int64
	now           func() time.Time
}

func NewBookingService(bookings BookingStore, rooms RoomStore, users UserStore, services ServiceStore, loyalty *LoyaltyService, publisher Publisher, opts Options) *BookingService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &BookingService{
		bookings:      bookings,
		rooms:         rooms,
		users:         users,
		services:      services,
		loyalty:       loyalty,
		publisher:     publisher,
		pointsPerUnit: opts.PointsPerCurrencyUnit,
		now:           opts.Now,
	}
}

// Create books a room for [CheckIn, CheckOut). The overlap check and insert run
// in one store transaction, so of two concurrent requests for the same window
// at most one succeeds.
func (s *BookingService) Create(ctx context.Context, req *models.CreateBookingRequest) (*models.Booking, error) {
	if !req.CheckIn.Before(req.CheckOut) {
		return nil, apperrors.Validation("check_in must be before check_out")
	}
	if req.Guests < 1 {
		return nil, apperrors.Validation("guests must be at least 1")
	}
	method, err := models.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, apperrors.Validation("%v", err)
	}

	room, err := s.rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return nil, apperrors.NotFound("room", req.RoomID)
	}
	if req.Guests > room.Capacity {
		return nil, apperrors.Validation("room %s holds at most %d guests", room.Number, room.Capacity)
	}

	user, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, apperrors.NotFound("user", req.UserID)
	}

	lines, err := s.priceServices(ctx, req.Services)
	if err != nil {
		return nil, err
	}

	roomTotal := room.Price * int64(models.Nights(req.CheckIn, req.CheckOut))
	servicesTotal := models.ServicesTotalOf(lines)

	booking := &models.Booking{
		UserID:          user.ID,
		RoomID:          room.ID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Guests:          req.Guests,
		SpecialRequests: req.SpecialRequests,
		PaymentMethod:   method,
		PaymentStatus:   models.PaymentStatusPending,
		RoomTotal:       roomTotal,
		ServicesTotal:   servicesTotal,
		TotalPrice:      roomTotal + servicesTotal,
		Status:          models.BookingPending,
	}

	if err := s.bookings.CreateIfAvailable(ctx, booking, lines); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			metrics.BookingConflicts.Inc()
			return nil, apperrors.Conflict("room %s is already booked for the requested dates", room.Number)
		case errors.Is(err, repository.ErrRoomUnavailable):
			return nil, apperrors.Conflict("room %s is under maintenance", room.Number)
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NotFound("room", req.RoomID)
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	metrics.BookingsCreated.Inc()

	logger.WithContext(ctx).Info("Booking created",
		"booking_id", booking.ID, "room_id", booking.RoomID, "total_price", booking.TotalPrice)

	publish(ctx, s.publisher, models.EventBookingCreated, models.BookingCreatedEvent{
		BookingID:  booking.ID,
		RoomID:     booking.RoomID,
		UserID:     booking.UserID,
		CheckIn:    booking.CheckIn,
		CheckOut:   booking.CheckOut,
		TotalPrice: booking.TotalPrice,
		Timestamp:  s.now(),
	}, "booking_id", booking.ID)

	return booking, nil
}

// priceServices snapshots the current price of each requested add-on.
func (s *BookingService) priceServices(ctx context.Context, requested []models.ServiceLine) ([]models.BookingService, error) {
	lines := make([]models.BookingService, 0, len(requested))
	for _, r := range requested {
		if r.Quantity < 1 {
			return nil, apperrors.Validation("service %d quantity must be at least 1", r.ServiceID)
		}
		svc, err := s.services.GetByID(ctx, r.ServiceID)
		if err != nil {
			return nil, fmt.Errorf("failed to get service: %w", err)
		}
		if svc == nil || !svc.IsActive {
			return nil, apperrors.NotFound("service", r.ServiceID)
		}
		lines = append(lines, models.BookingService{
			ServiceID: svc.ID,
			Quantity:  r.Quantity,
			UnitPrice: svc.Price,
		})
	}
	return lines, nil
}

// Transition moves the booking along the lifecycle graph. Completing a booking
// credits loyalty points once; asking to complete an already completed booking
// retries that credit and changes nothing else.
func (s *BookingService) Transition(ctx context.Context, id int64, target string) (*models.Booking, error) {
	to, err := models.ParseBookingStatus(target)
	if err != nil {
		return nil, apperrors.Validation("%v", err)
	}

	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, apperrors.NotFound("booking", id)
	}

	if booking.Status == models.BookingCompleted && to == models.BookingCompleted {
		s.awardPoints(ctx, booking)
		return booking, nil
	}

	from := booking.Status
	if !models.CanTransition(from, to) {
		return nil, apperrors.InvalidTransition(string(from), string(to))
	}

	updated, err := s.bookings.UpdateStatus(ctx, id, from, to)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStaleStatus):
			return nil, apperrors.Conflict("booking %d was modified concurrently", id)
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NotFound("booking", id)
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	metrics.BookingTransitions.WithLabelValues(string(from), string(to)).Inc()

	logger.WithContext(ctx).Info("Booking status changed",
		"booking_id", id, "from", from, "to", to)

	if to == models.BookingCompleted {
		s.awardPoints(ctx, updated)
	}

	publish(ctx, s.publisher, models.EventBookingStatusChanged, models.BookingStatusChangedEvent{
		BookingID: updated.ID,
		RoomID:    updated.RoomID,
		UserID:    updated.UserID,
		From:      from,
		To:        to,
		Timestamp: s.now(),
	}, "booking_id", id)

	return updated, nil
}

// awardPoints credits the stay. The ledger ignores a second credit for the same
// booking. A failure is logged and counted; the next completion request retries it.
func (s *BookingService) awardPoints(ctx context.Context, booking *models.Booking) {
	points := models.PointsForAmount(booking.TotalPrice, s.pointsPerUnit)
	if points <= 0 {
		return
	}
	description := fmt.Sprintf("Stay %d", booking.ID)
	if _, err := s.loyalty.Earn(ctx, booking.UserID, booking.ID, points, description); err != nil {
		metrics.PointsEarnFailures.Inc()
		logger.WithContext(ctx).Error("Failed to credit loyalty points",
			"error", err, "booking_id", booking.ID, "points", points)
	}
}

// CheckAvailability reports whether the room can be booked for the window. A room
// under maintenance is never available. It does not reserve anything.
func (s *BookingService) CheckAvailability(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (bool, error) {
	if !checkIn.Before(checkOut) {
		return false, apperrors.Validation("check_in must be before check_out")
	}

	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return false, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return false, apperrors.NotFound("room", roomID)
	}
	if room.Status == models.RoomMaintenance {
		return false, nil
	}

	overlapping, err := s.bookings.HasOverlap(ctx, roomID, checkIn, checkOut)
	if err != nil {
		return false, fmt.Errorf("failed to check availability: %w", err)
	}
	return !overlapping, nil
}

func (s *BookingService) Get(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, apperrors.NotFound("booking", id)
	}
	return booking, nil
}

func (s *BookingService) ListForUser(ctx context.Context, userID int64) ([]models.Booking, error) {
	bookings, err := s.bookings.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}
	return bookings, nil
}

// ExpirePending cancels pending bookings older than hold. Bookings that moved on
// in the meantime are skipped.
func (s *BookingService) ExpirePending(ctx context.Context, hold time.Duration) (int, error) {
	stale, err := s.bookings.ListExpiredPending(ctx, s.now().Add(-hold))
	if err != nil {
		return 0, fmt.Errorf("failed to list pending bookings: %w", err)
	}

	expired := 0
	for _, b := range stale {
		if _, err := s.Transition(ctx, b.ID, string(models.BookingCancelled)); err != nil {
			if errors.Is(err, apperrors.ErrConflict) || errors.Is(err, apperrors.ErrInvalidTransition) {
				continue
			}
			return expired, err
		}
		expired++
	}
	if expired > 0 {
		metrics.BookingsExpired.Add(float64(expired))
	}
	return expired, nil
}
