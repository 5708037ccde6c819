package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "hotelier/internal/errors"
	"hotelier/internal/models"
	"hotelier/internal/repository"
)

// AddOnService manages the priced extras (breakfast, transfers, spa) that can be
// attached to bookings.
type AddOnService struct {
	services ServiceStore
	bookings BookingStore
}

func NewAddOnService(services ServiceStore, bookings BookingStore) *AddOnService {
	return &AddOnService{services: services, bookings: bookings}
}

func (s *AddOnService) Create(ctx context.Context, req *models.CreateServiceRequest) (*models.Service, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.Validation("service name is required")
	}
	if req.Price <= 0 {
		return nil, apperrors.Validation("service price must be positive")
	}

	svc := &models.Service{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		IsActive:    true,
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return svc, nil
}

func (s *AddOnService) List(ctx context.Context) ([]models.Service, error) {
	services, err := s.services.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

// AddToBooking attaches quantity × service to a booking that still holds its room.
func (s *AddOnService) AddToBooking(ctx context.Context, bookingID, serviceID int64, quantity int) (*models.Booking, error) {
	if quantity < 1 {
		return nil, apperrors.Validation("quantity must be at least 1")
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, apperrors.NotFound("booking", bookingID)
	}
	if !booking.Status.HoldsRoom() {
		return nil, apperrors.NotEligible("cannot add services to a %s booking", booking.Status)
	}

	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	if svc == nil || !svc.IsActive {
		return nil, apperrors.NotFound("service", serviceID)
	}

	line := &models.BookingService{
		BookingID: bookingID,
		ServiceID: svc.ID,
		Quantity:  quantity,
		UnitPrice: svc.Price,
	}
	updated, err := s.bookings.AddService(ctx, line)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStaleStatus):
			return nil, apperrors.NotEligible("booking %d no longer accepts services", bookingID)
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NotFound("booking", bookingID)
		}
		return nil, fmt.Errorf("failed to add service: %w", err)
	}
	return updated, nil
}
