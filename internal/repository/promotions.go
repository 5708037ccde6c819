package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hotelier/internal/database"
	"hotelier/internal/models"
)

type PromotionRepository struct {
	db *database.DB
}

func NewPromotionRepository(db *database.DB) *PromotionRepository {
	return &PromotionRepository{db: db}
}

const promoColumns = `id, code, description, discount_type, discount_value, max_discount, min_amount,
	valid_from, valid_to, usage_limit, used_count, per_user_limit, is_active, created_at`

func (r *PromotionRepository) Create(ctx context.Context, promo *models.PromoCode) error {
	query := `
		INSERT INTO promotional_codes (code, description, discount_type, discount_value, max_discount,
		                               min_amount, valid_from, valid_to, usage_limit, per_user_limit, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, used_count, created_at`

	err := r.db.QueryRowContext(ctx, query,
		promo.Code,
		promo.Description,
		promo.DiscountType,
		promo.DiscountValue,
		promo.MaxDiscount,
		promo.MinAmount,
		promo.ValidFrom,
		promo.ValidTo,
		promo.UsageLimit,
		promo.PerUserLimit,
		promo.IsActive,
	).Scan(&promo.ID, &promo.UsedCount, &promo.CreatedAt)

	return mapPQError(err)
}

func (r *PromotionRepository) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	promo := &models.PromoCode{}
	query := `SELECT ` + promoColumns + ` FROM promotional_codes WHERE code = $1`

	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&promo.ID,
		&promo.Code,
		&promo.Description,
		&promo.DiscountType,
		&promo.DiscountValue,
		&promo.MaxDiscount,
		&promo.MinAmount,
		&promo.ValidFrom,
		&promo.ValidTo,
		&promo.UsageLimit,
		&promo.UsedCount,
		&promo.PerUserLimit,
		&promo.IsActive,
		&promo.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return promo, err
}

// Redeem consumes one use of the code for the booking. The usage counter is bumped
// with a conditional update, so concurrent redemptions never exceed the limit.
// Returns ErrUsageLimit, ErrPerUserLimit, ErrDuplicate when the booking already
// used the code, or ErrAlreadyDiscounted when another code got there first.
func (r *PromotionRepository) Redeem(ctx context.Context, usage *models.PromoCodeUsage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var perUserLimit int
	bumpQuery := `
		UPDATE promotional_codes SET used_count = used_count + 1
		WHERE id = $1 AND used_count < usage_limit
		RETURNING per_user_limit`
	err = tx.QueryRowContext(ctx, bumpQuery, usage.PromoCodeID).Scan(&perUserLimit)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUsageLimit
	}
	if err != nil {
		return mapPQError(err)
	}

	if perUserLimit > 0 {
		var used int
		countQuery := `SELECT COUNT(*) FROM promotional_code_usages WHERE promo_code_id = $1 AND user_id = $2`
		if err := tx.QueryRowContext(ctx, countQuery, usage.PromoCodeID, usage.UserID).Scan(&used); err != nil {
			return err
		}
		if used >= perUserLimit {
			return ErrPerUserLimit
		}
	}

	insertQuery := `
		INSERT INTO promotional_code_usages (promo_code_id, user_id, booking_id, discount_amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, used_at`
	err = tx.QueryRowContext(ctx, insertQuery, usage.PromoCodeID, usage.UserID, usage.BookingID, usage.DiscountAmount).
		Scan(&usage.ID, &usage.UsedAt)
	if err != nil {
		return mapPQError(err)
	}

	// one discount per booking; a concurrent redemption of another code waits on
	// the row lock and then matches nothing
	res, err := tx.ExecContext(ctx, `
		UPDATE bookings SET discount_amount = $1, updated_at = NOW()
		WHERE id = $2 AND discount_amount = 0`,
		usage.DiscountAmount, usage.BookingID)
	if err != nil {
		return fmt.Errorf("apply discount: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, usage.BookingID).Scan(&exists); err != nil {
			return fmt.Errorf("check booking: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrAlreadyDiscounted
	}

	return tx.Commit()
}
