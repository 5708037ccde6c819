package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hotelier/internal/database"
	"hotelier/internal/models"
)

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, user_id, room_id, check_in, check_out, guests, special_requests,
	payment_method, payment_status, room_total, services_total, total_price, discount_amount,
	status, created_at, updated_at`

// overlapQuery is the half-open window predicate over non-cancelled bookings.
const overlapQuery = `
	SELECT EXISTS (
		SELECT 1 FROM bookings
		WHERE room_id = $1 AND status <> 'cancelled' AND check_in < $3 AND check_out > $2
	)`

// activeOverlapQuery finds another open booking, other than $2, whose window
// intersects [$3, $4).
const activeOverlapQuery = `
	SELECT EXISTS (
		SELECT 1 FROM bookings
		WHERE room_id = $1 AND id <> $2 AND status NOT IN ('cancelled', 'completed')
		  AND check_in < $4 AND check_out > $3
	)`

// roomReservedQuery finds a booking that keeps the room booked for a current or
// future stay. Mirrors models.Booking.ReservesRoom.
const roomReservedQuery = `
	SELECT EXISTS (
		SELECT 1 FROM bookings
		WHERE room_id = $1 AND check_out > NOW()
		  AND (status IN ('deposit_paid', 'confirmed')
		       OR (status = 'pending' AND payment_method IN ('card', 'bank_transfer')))
	)`

func scanBooking(row scanner) (*models.Booking, error) {
	b := &models.Booking{}
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.RoomID,
		&b.CheckIn,
		&b.CheckOut,
		&b.Guests,
		&b.SpecialRequests,
		&b.PaymentMethod,
		&b.PaymentStatus,
		&b.RoomTotal,
		&b.ServicesTotal,
		&b.TotalPrice,
		&b.DiscountAmount,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	return b, err
}

type execQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// CreateIfAvailable inserts the booking and its service lines after locking the room
// row and re-checking the window. Returns ErrNotFound for an unknown room,
// ErrConflict when the window is taken and ErrRoomUnavailable under maintenance.
func (r *BookingRepository) CreateIfAvailable(ctx context.Context, booking *models.Booking, lines []models.BookingService) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var roomStatus models.RoomStatus
	err = tx.QueryRowContext(ctx, `SELECT status FROM rooms WHERE id = $1 FOR UPDATE`, booking.RoomID).Scan(&roomStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock room: %w", err)
	}

	var overlapping bool
	if err := tx.QueryRowContext(ctx, overlapQuery, booking.RoomID, booking.CheckIn, booking.CheckOut).Scan(&overlapping); err != nil {
		return fmt.Errorf("check overlap: %w", err)
	}
	if overlapping {
		return ErrConflict
	}
	if roomStatus == models.RoomMaintenance {
		return ErrRoomUnavailable
	}

	insertQuery := `
		INSERT INTO bookings (user_id, room_id, check_in, check_out, guests, special_requests,
		                      payment_method, payment_status, room_total, services_total,
		                      total_price, discount_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRowContext(ctx, insertQuery,
		booking.UserID,
		booking.RoomID,
		booking.CheckIn,
		booking.CheckOut,
		booking.Guests,
		booking.SpecialRequests,
		booking.PaymentMethod,
		booking.PaymentStatus,
		booking.RoomTotal,
		booking.ServicesTotal,
		booking.TotalPrice,
		booking.DiscountAmount,
		booking.Status,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return mapPQError(err)
	}

	booking.Services = make([]models.BookingService, 0, len(lines))
	for _, line := range lines {
		line.BookingID = booking.ID
		if err := insertBookingService(ctx, tx, &line); err != nil {
			return err
		}
		booking.Services = append(booking.Services, line)
	}

	if booking.PaymentMethod.Prepaid() && roomStatus != models.RoomBooked {
		if _, err := tx.ExecContext(ctx, `UPDATE rooms SET status = 'booked', updated_at = NOW() WHERE id = $1`, booking.RoomID); err != nil {
			return fmt.Errorf("mark room booked: %w", err)
		}
	}

	return mapPQError(tx.Commit())
}

func insertBookingService(ctx context.Context, q execQuerier, line *models.BookingService) error {
	query := `
		INSERT INTO booking_services (booking_id, service_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, added_at`
	err := q.QueryRowContext(ctx, query, line.BookingID, line.ServiceID, line.Quantity, line.UnitPrice).
		Scan(&line.ID, &line.AddedAt)
	if err != nil {
		return fmt.Errorf("insert booking service: %w", err)
	}
	return nil
}

// HasOverlap reports whether a non-cancelled booking of the room intersects [checkIn, checkOut).
func (r *BookingRepository) HasOverlap(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (bool, error) {
	var overlapping bool
	err := r.db.QueryRowContext(ctx, overlapQuery, roomID, checkIn, checkOut).Scan(&overlapping)
	return overlapping, err
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	booking.Services, err = r.getServices(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *BookingRepository) getServices(ctx context.Context, q execQuerier, bookingID int64) ([]models.BookingService, error) {
	query := `
		SELECT id, booking_id, service_id, quantity, unit_price, added_at
		FROM booking_services
		WHERE booking_id = $1
		ORDER BY id`

	rows, err := q.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := []models.BookingService{}
	for rows.Next() {
		var s models.BookingService
		if err := rows.Scan(&s.ID, &s.BookingID, &s.ServiceID, &s.Quantity, &s.UnitPrice, &s.AddedAt); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func (r *BookingRepository) GetByUserID(ctx context.Context, userID int64) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

// ListExpiredPending returns pending bookings created before the cutoff.
func (r *BookingRepository) ListExpiredPending(ctx context.Context, before time.Time) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = 'pending' AND created_at < $1 ORDER BY created_at`
	return r.list(ctx, query, before)
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}
	return bookings, rows.Err()
}

// UpdateStatus moves a booking from -> to and applies the room side effect in the
// same transaction. The room row is locked before the booking row, matching
// CreateIfAvailable. A booking no longer in from yields ErrStaleStatus.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, from, to models.BookingStatus) (*models.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var roomID int64
	err = tx.QueryRowContext(ctx, `SELECT room_id FROM bookings WHERE id = $1`, id).Scan(&roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var roomStatus models.RoomStatus
	if err := tx.QueryRowContext(ctx, `SELECT status FROM rooms WHERE id = $1 FOR UPDATE`, roomID).Scan(&roomStatus); err != nil {
		return nil, fmt.Errorf("lock room: %w", err)
	}

	current, err := scanBooking(tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, fmt.Errorf("lock booking: %w", err)
	}
	if current.Status != from {
		return nil, ErrStaleStatus
	}

	updateQuery := `
		UPDATE bookings SET status = $1, payment_status = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4
		RETURNING ` + bookingColumns
	updated, err := scanBooking(tx.QueryRowContext(ctx, updateQuery,
		to, models.PaymentStatusFor(to, current.PaymentStatus), id, from))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStaleStatus
	}
	if err != nil {
		return nil, mapPQError(err)
	}

	var otherActive bool
	if err := tx.QueryRowContext(ctx, activeOverlapQuery, roomID, id, updated.CheckIn, updated.CheckOut).Scan(&otherActive); err != nil {
		return nil, fmt.Errorf("check room holders: %w", err)
	}

	if next := models.RoomStatusAfter(to, roomStatus, otherActive); next != roomStatus {
		if _, err := tx.ExecContext(ctx, `UPDATE rooms SET status = $1, updated_at = NOW() WHERE id = $2`, next, roomID); err != nil {
			return nil, fmt.Errorf("update room status: %w", err)
		}
	}

	updated.Services, err = r.getServices(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	return updated, tx.Commit()
}

// AddService appends a service line and bumps the booking totals. Bookings that
// are completed or cancelled yield ErrStaleStatus.
func (r *BookingRepository) AddService(ctx context.Context, line *models.BookingService) (*models.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var status models.BookingStatus
	err = tx.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = $1 FOR UPDATE`, line.BookingID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !status.HoldsRoom() {
		return nil, ErrStaleStatus
	}

	if err := insertBookingService(ctx, tx, line); err != nil {
		return nil, err
	}

	updateQuery := `
		UPDATE bookings
		SET services_total = services_total + $1, total_price = total_price + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + bookingColumns
	booking, err := scanBooking(tx.QueryRowContext(ctx, updateQuery, line.Total(), line.BookingID))
	if err != nil {
		return nil, err
	}

	booking.Services, err = r.getServices(ctx, tx, line.BookingID)
	if err != nil {
		return nil, err
	}

	return booking, tx.Commit()
}

func (r *BookingRepository) CountByStatus(ctx context.Context) (map[models.BookingStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM bookings GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[models.BookingStatus]int{}
	for rows.Next() {
		var status models.BookingStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// CurrentGuests sums guests over confirmed bookings whose window contains now.
func (r *BookingRepository) CurrentGuests(ctx context.Context, now time.Time) (int, error) {
	query := `
		SELECT COALESCE(SUM(guests), 0) FROM bookings
		WHERE status = 'confirmed' AND check_in <= $1 AND check_out > $1`

	var guests int
	err := r.db.QueryRowContext(ctx, query, now).Scan(&guests)
	return guests, err
}
