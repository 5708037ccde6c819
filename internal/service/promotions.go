package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "hotelier/internal/errors"
	"hotelier/internal/logger"
	"hotelier/internal/metrics"
	"hotelier/internal/models"
	"hotelier/internal/repository"
)

type PromotionService struct {
	promos    PromotionStore
	bookings  BookingStore
	publisher Publisher
	now       func() time.Time
}

func NewPromotionService(promos PromotionStore, bookings BookingStore, publisher Publisher, now func() time.Time) *PromotionService {
	if now == nil {
		now = time.Now
	}
	return &PromotionService{promos: promos, bookings: bookings, publisher: publisher, now: now}
}

// evaluate checks the code against subtotal at now. Checks run in a fixed order:
// existence, validity window, active flag, usage cap, minimum amount.
func (s *PromotionService) evaluate(ctx context.Context, code string, subtotal int64, now time.Time) (*models.PromoCode, int64, error) {
	if subtotal < 0 {
		return nil, 0, apperrors.Validation("subtotal must not be negative")
	}

	promo, err := s.promos.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get promotional code: %w", err)
	}
	if promo == nil {
		return nil, 0, apperrors.NotFound("promotional code", code)
	}
	if !promo.InWindow(now) {
		return nil, 0, apperrors.New(apperrors.KindExpired, fmt.Sprintf("promotional code %s is not valid at this time", promo.Code), nil)
	}
	if !promo.IsActive {
		return nil, 0, apperrors.New(apperrors.KindInactive, fmt.Sprintf("promotional code %s is inactive", promo.Code), nil)
	}
	if promo.Depleted() {
		return nil, 0, apperrors.New(apperrors.KindUsageLimit, fmt.Sprintf("promotional code %s has reached its usage limit", promo.Code), nil)
	}
	if subtotal < promo.MinAmount {
		return nil, 0, apperrors.New(apperrors.KindMinimumNotMet,
			fmt.Sprintf("promotional code %s requires a subtotal of at least %d", promo.Code, promo.MinAmount), nil)
	}

	return promo, promo.DiscountFor(subtotal), nil
}

// ValidateCode reports the discount the code would grant. It never consumes a use.
func (s *PromotionService) ValidateCode(ctx context.Context, code string, subtotal int64) (*models.ValidatePromoResponse, error) {
	promo, discount, err := s.evaluate(ctx, code, subtotal, s.now())
	if err != nil {
		return nil, err
	}
	return &models.ValidatePromoResponse{Valid: true, Code: promo.Code, DiscountAmount: discount}, nil
}

// Redeem records one use of the code on the booking. The usage count can never
// pass the limit, even under concurrent redemptions.
func (s *PromotionService) Redeem(ctx context.Context, promo *models.PromoCode, userID, bookingID, discount int64) error {
	usage := &models.PromoCodeUsage{
		PromoCodeID:    promo.ID,
		UserID:         userID,
		BookingID:      bookingID,
		DiscountAmount: discount,
	}
	if err := s.promos.Redeem(ctx, usage); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsageLimit):
			return apperrors.New(apperrors.KindUsageLimit, fmt.Sprintf("promotional code %s has reached its usage limit", promo.Code), nil)
		case errors.Is(err, repository.ErrPerUserLimit):
			return apperrors.New(apperrors.KindUsageLimit, fmt.Sprintf("promotional code %s was already used the maximum number of times by this user", promo.Code), nil)
		case errors.Is(err, repository.ErrDuplicate):
			return apperrors.Conflict("promotional code %s was already applied to booking %d", promo.Code, bookingID)
		case errors.Is(err, repository.ErrAlreadyDiscounted):
			return apperrors.Conflict("booking %d already has a discount", bookingID)
		case errors.Is(err, repository.ErrNotFound):
			return apperrors.NotFound("booking", bookingID)
		}
		return fmt.Errorf("failed to redeem promotional code: %w", err)
	}
	metrics.PromoRedemptions.WithLabelValues(promo.Code).Inc()

	logger.WithContext(ctx).Info("Promotional code redeemed",
		"code", promo.Code, "booking_id", bookingID, "discount", discount)

	publish(ctx, s.publisher, models.EventPromotionRedeemed, models.PromotionRedeemedEvent{
		PromoCodeID:    promo.ID,
		BookingID:      bookingID,
		UserID:         userID,
		DiscountAmount: discount,
		Timestamp:      s.now(),
	}, "booking_id", bookingID)

	return nil
}

// ApplyToBooking validates the code against the booking total and redeems it.
func (s *PromotionService) ApplyToBooking(ctx context.Context, code string, bookingID int64) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, apperrors.NotFound("booking", bookingID)
	}
	if !booking.Status.HoldsRoom() {
		return nil, apperrors.NotEligible("cannot apply a promotional code to a %s booking", booking.Status)
	}
	if booking.DiscountAmount > 0 {
		return nil, apperrors.Conflict("booking %d already has a discount", bookingID)
	}

	promo, discount, err := s.evaluate(ctx, code, booking.TotalPrice, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.Redeem(ctx, promo, booking.UserID, booking.ID, discount); err != nil {
		return nil, err
	}

	booking.DiscountAmount = discount
	return booking, nil
}

func (s *PromotionService) Create(ctx context.Context, req *models.CreatePromoRequest) (*models.PromoCode, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, apperrors.Validation("code is required")
	}
	if req.ValidTo.Before(req.ValidFrom) {
		return nil, apperrors.Validation("valid_to must not be before valid_from")
	}
	if req.DiscountType == models.DiscountPercentage && req.DiscountValue > 100 {
		return nil, apperrors.Validation("percentage discount must not exceed 100")
	}
	if req.MaxDiscount != nil && *req.MaxDiscount <= 0 {
		return nil, apperrors.Validation("max_discount must be positive")
	}

	promo := &models.PromoCode{
		Code:          code,
		Description:   req.Description,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MaxDiscount:   req.MaxDiscount,
		MinAmount:     req.MinAmount,
		ValidFrom:     req.ValidFrom,
		ValidTo:       req.ValidTo,
		UsageLimit:    req.UsageLimit,
		PerUserLimit:  req.PerUserLimit,
		IsActive:      true,
	}
	if err := s.promos.Create(ctx, promo); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("promotional code %s already exists", code)
		}
		return nil, fmt.Errorf("failed to create promotional code: %w", err)
	}
	return promo, nil
}
