package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hotelier/internal/database"
	"hotelier/internal/models"
)

type LoyaltyRepository struct {
	db *database.DB
}

func NewLoyaltyRepository(db *database.DB) *LoyaltyRepository {
	return &LoyaltyRepository{db: db}
}

// lockAccount creates the account row if missing and locks it for the transaction.
func lockAccount(ctx context.Context, tx *sql.Tx, userID int64) (models.LoyaltyAccount, error) {
	acc := models.LoyaltyAccount{UserID: userID}

	if _, err := tx.ExecContext(ctx, `INSERT INTO loyalty_points (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
		return acc, fmt.Errorf("ensure loyalty account: %w", err)
	}

	query := `SELECT current_points, total_earned, updated_at FROM loyalty_points WHERE user_id = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, query, userID).Scan(&acc.CurrentPoints, &acc.TotalEarned, &acc.UpdatedAt); err != nil {
		return acc, fmt.Errorf("lock loyalty account: %w", err)
	}
	return acc, nil
}

func insertPointTransaction(ctx context.Context, tx *sql.Tx, pt *models.PointTransaction) error {
	query := `
		INSERT INTO point_transactions (user_id, type, points, booking_id, reward_id, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := tx.QueryRowContext(ctx, query,
		pt.UserID,
		pt.Type,
		pt.Points,
		pt.BookingID,
		pt.RewardID,
		pt.Description,
	).Scan(&pt.ID, &pt.CreatedAt)
	return mapPQError(err)
}

// Earn appends an earned transaction and credits the account. When the booking
// already earned points nothing changes and applied is false.
func (r *LoyaltyRepository) Earn(ctx context.Context, pt *models.PointTransaction) (acc models.LoyaltyAccount, applied bool, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return acc, false, err
	}
	defer tx.Rollback()

	acc, err = lockAccount(ctx, tx, pt.UserID)
	if err != nil {
		return acc, false, err
	}

	if pt.BookingID != nil {
		var earned bool
		query := `SELECT EXISTS (SELECT 1 FROM point_transactions WHERE booking_id = $1 AND type = 'earned')`
		if err := tx.QueryRowContext(ctx, query, *pt.BookingID).Scan(&earned); err != nil {
			return acc, false, err
		}
		if earned {
			return acc, false, nil
		}
	}

	pt.Type = models.PointsEarned
	if err := insertPointTransaction(ctx, tx, pt); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return acc, false, nil
		}
		return acc, false, err
	}

	query := `
		UPDATE loyalty_points
		SET current_points = current_points + $1, total_earned = total_earned + $1, updated_at = NOW()
		WHERE user_id = $2
		RETURNING current_points, total_earned, updated_at`
	if err := tx.QueryRowContext(ctx, query, pt.Points, pt.UserID).Scan(&acc.CurrentPoints, &acc.TotalEarned, &acc.UpdatedAt); err != nil {
		return acc, false, err
	}

	if err := tx.Commit(); err != nil {
		return acc, false, err
	}
	return acc, true, nil
}

// Redeem debits the account. When the balance is too small it returns the
// current account along with ErrInsufficientPoints.
func (r *LoyaltyRepository) Redeem(ctx context.Context, pt *models.PointTransaction) (models.LoyaltyAccount, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.LoyaltyAccount{UserID: pt.UserID}, err
	}
	defer tx.Rollback()

	acc, err := lockAccount(ctx, tx, pt.UserID)
	if err != nil {
		return acc, err
	}
	if pt.Points > acc.CurrentPoints {
		return acc, ErrInsufficientPoints
	}

	pt.Type = models.PointsRedeemed
	if err := insertPointTransaction(ctx, tx, pt); err != nil {
		return acc, err
	}

	query := `
		UPDATE loyalty_points
		SET current_points = current_points - $1, updated_at = NOW()
		WHERE user_id = $2
		RETURNING current_points, total_earned, updated_at`
	if err := tx.QueryRowContext(ctx, query, pt.Points, pt.UserID).Scan(&acc.CurrentPoints, &acc.TotalEarned, &acc.UpdatedAt); err != nil {
		return acc, mapPQError(err)
	}

	return acc, tx.Commit()
}

// GetAccount returns a zero account for users who never earned points.
func (r *LoyaltyRepository) GetAccount(ctx context.Context, userID int64) (models.LoyaltyAccount, error) {
	acc := models.LoyaltyAccount{UserID: userID}
	query := `SELECT current_points, total_earned, updated_at FROM loyalty_points WHERE user_id = $1`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(&acc.CurrentPoints, &acc.TotalEarned, &acc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return acc, nil
	}
	return acc, err
}

func (r *LoyaltyRepository) Transactions(ctx context.Context, userID int64) ([]models.PointTransaction, error) {
	query := `
		SELECT id, user_id, type, points, booking_id, reward_id, description, created_at
		FROM point_transactions
		WHERE user_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs := []models.PointTransaction{}
	for rows.Next() {
		var pt models.PointTransaction
		if err := rows.Scan(&pt.ID, &pt.UserID, &pt.Type, &pt.Points, &pt.BookingID, &pt.RewardID, &pt.Description, &pt.CreatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, pt)
	}
	return txs, rows.Err()
}
