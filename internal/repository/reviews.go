package repository

import (
	"context"
	"database/sql"
	"errors"

	"hotelier/internal/database"
	"hotelier/internal/models"
)

type ReviewRepository struct {
	db *database.DB
}

func NewReviewRepository(db *database.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewColumns = `id, booking_id, user_id, room_id, rating, title, comment, created_at`

func scanReview(row scanner) (*models.Review, error) {
	rv := &models.Review{}
	err := row.Scan(
		&rv.ID,
		&rv.BookingID,
		&rv.UserID,
		&rv.RoomID,
		&rv.Rating,
		&rv.Title,
		&rv.Comment,
		&rv.CreatedAt,
	)
	return rv, err
}

// Create inserts the review. A second review of the same booking yields ErrDuplicate.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (booking_id, user_id, room_id, rating, title, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		review.BookingID,
		review.UserID,
		review.RoomID,
		review.Rating,
		review.Title,
		review.Comment,
	).Scan(&review.ID, &review.CreatedAt)

	return mapPQError(err)
}

func (r *ReviewRepository) GetByBookingID(ctx context.Context, bookingID int64) (*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE booking_id = $1`

	review, err := scanReview(r.db.QueryRowContext(ctx, query, bookingID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return review, err
}

func (r *ReviewRepository) ListByRoom(ctx context.Context, roomID int64) ([]models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE room_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *review)
	}
	return reviews, rows.Err()
}

// RoomRating aggregates all reviews of the room in SQL.
func (r *ReviewRepository) RoomRating(ctx context.Context, roomID int64) (models.RoomRating, error) {
	rating := models.RoomRating{RoomID: roomID}
	query := `SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*) FROM reviews WHERE room_id = $1`

	var avg float64
	if err := r.db.QueryRowContext(ctx, query, roomID).Scan(&avg, &rating.TotalReviews); err != nil {
		return rating, err
	}
	rating.AverageRating = models.RoundRating(avg)
	return rating, nil
}
