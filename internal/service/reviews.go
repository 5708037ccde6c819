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

type ReviewService struct {
	reviews   ReviewStore
	bookings  BookingStore
	rooms     RoomStore
	cache     RatingCache
	publisher Publisher
}

func NewReviewService(reviews ReviewStore, bookings BookingStore, rooms RoomStore, cache RatingCache, publisher Publisher) *ReviewService {
	return &ReviewService{reviews: reviews, bookings: bookings, rooms: rooms, cache: cache, publisher: publisher}
}

// Submit records a review of a completed booking. Each booking gets one review.
func (s *ReviewService) Submit(ctx context.Context, req *models.SubmitReviewRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.Validation("rating must be between 1 and 5")
	}

	booking, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, apperrors.NotFound("booking", req.BookingID)
	}
	if booking.Status != models.BookingCompleted {
		return nil, apperrors.NotEligible("only completed stays can be reviewed, booking %d is %s", booking.ID, booking.Status)
	}

	existing, err := s.reviews.GetByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if existing != nil {
		return nil, duplicateReview(booking.ID)
	}

	review := &models.Review{
		BookingID: booking.ID,
		UserID:    booking.UserID,
		RoomID:    booking.RoomID,
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateReview(booking.ID)
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateRating(ctx, review.RoomID); err != nil {
			logger.WithContext(ctx).Warn("Failed to invalidate room rating", "error", err, "room_id", review.RoomID)
		}
	}

	publish(ctx, s.publisher, models.EventReviewSubmitted, models.ReviewSubmittedEvent{
		ReviewID:  review.ID,
		BookingID: review.BookingID,
		RoomID:    review.RoomID,
		Rating:    review.Rating,
		Timestamp: time.Now(),
	}, "review_id", review.ID)

	return review, nil
}

func duplicateReview(bookingID int64) error {
	return apperrors.New(apperrors.KindDuplicateReview, fmt.Sprintf("booking %d has already been reviewed", bookingID), nil)
}

// RoomRating returns the average rating rounded to two decimals, {0, 0} without reviews.
func (s *ReviewService) RoomRating(ctx context.Context, roomID int64) (models.RoomRating, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return models.RoomRating{}, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return models.RoomRating{}, apperrors.NotFound("room", roomID)
	}

	if s.cache != nil {
		cached, err := s.cache.GetRating(ctx, roomID)
		switch {
		case err != nil:
			metrics.RatingCacheLookups.WithLabelValues("error").Inc()
			logger.WithContext(ctx).Warn("Room rating cache read failed", "error", err, "room_id", roomID)
		case cached != nil:
			metrics.RatingCacheLookups.WithLabelValues("hit").Inc()
			return *cached, nil
		default:
			metrics.RatingCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	rating, err := s.reviews.RoomRating(ctx, roomID)
	if err != nil {
		return models.RoomRating{}, fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetRating(ctx, rating); err != nil {
			logger.WithContext(ctx).Warn("Failed to cache room rating", "error", err, "room_id", roomID)
		}
	}
	return rating, nil
}

func (s *ReviewService) ListForRoom(ctx context.Context, roomID int64) ([]models.Review, error) {
	reviews, err := s.reviews.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}
