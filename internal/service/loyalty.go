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

// LoyaltyService is the points ledger. The balance is only ever changed
// together with an appended transaction.
type LoyaltyService struct {
	store     LoyaltyStore
	publisher Publisher
}

func NewLoyaltyService(store LoyaltyStore, publisher Publisher) *LoyaltyService {
	return &LoyaltyService{store: store, publisher: publisher}
}

// Earn credits points for a booking. A booking earns at most once; repeated
// calls return the balance unchanged.
func (s *LoyaltyService) Earn(ctx context.Context, userID, bookingID, amount int64, description string) (models.Balance, error) {
	if amount <= 0 {
		return models.Balance{}, apperrors.Validation("points to earn must be positive")
	}

	pt := &models.PointTransaction{
		UserID:      userID,
		Points:      amount,
		BookingID:   &bookingID,
		Description: description,
	}
	acc, applied, err := s.store.Earn(ctx, pt)
	if err != nil {
		return models.Balance{}, fmt.Errorf("failed to earn points: %w", err)
	}

	balance := models.BalanceOf(acc)
	if !applied {
		return balance, nil
	}
	metrics.PointsEarned.Add(float64(amount))

	logger.WithContext(ctx).Info("Loyalty points earned",
		"user_id", userID, "booking_id", bookingID, "points", amount, "level", balance.CurrentLevel)

	publish(ctx, s.publisher, models.EventPointsEarned, models.PointsEarnedEvent{
		UserID:    userID,
		BookingID: bookingID,
		Points:    amount,
		Level:     balance.CurrentLevel,
		Timestamp: time.Now(),
	}, "user_id", userID)

	return balance, nil
}

func (s *LoyaltyService) Redeem(ctx context.Context, userID int64, rewardID string, points int64) (models.Balance, error) {
	if points <= 0 {
		return models.Balance{}, apperrors.Validation("points to redeem must be positive")
	}
	if rewardID == "" {
		return models.Balance{}, apperrors.Validation("reward_id is required")
	}

	pt := &models.PointTransaction{
		UserID:      userID,
		Points:      points,
		RewardID:    &rewardID,
		Description: "Reward " + rewardID,
	}
	acc, err := s.store.Redeem(ctx, pt)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientPoints) {
			return models.Balance{}, apperrors.InsufficientPoints(points, acc.CurrentPoints)
		}
		return models.Balance{}, fmt.Errorf("failed to redeem points: %w", err)
	}
	metrics.PointsRedeemed.Add(float64(points))

	logger.WithContext(ctx).Info("Loyalty points redeemed",
		"user_id", userID, "reward_id", rewardID, "points", points)

	return models.BalanceOf(acc), nil
}

func (s *LoyaltyService) Balance(ctx context.Context, userID int64) (models.Balance, error) {
	acc, err := s.store.GetAccount(ctx, userID)
	if err != nil {
		return models.Balance{}, fmt.Errorf("failed to get loyalty account: %w", err)
	}
	return models.BalanceOf(acc), nil
}

func (s *LoyaltyService) History(ctx context.Context, userID int64) ([]models.PointTransaction, error) {
	txs, err := s.store.Transactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get point transactions: %w", err)
	}
	return txs, nil
}
