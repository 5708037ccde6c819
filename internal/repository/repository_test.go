package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"hotelier/internal/database"
	"hotelier/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &database.DB{DB: db}, mock
}

var bookingRowColumns = []string{
	"id", "user_id", "room_id", "check_in", "check_out", "guests", "special_requests",
	"payment_method", "payment_status", "room_total", "services_total", "total_price", "discount_amount",
	"status", "created_at", "updated_at",
}

func bookingRow(id int64, status models.BookingStatus, in, out time.Time) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(bookingRowColumns).AddRow(
		id, int64(10), int64(3), in, out, 2, nil,
		"card", "pending", int64(400000), int64(0), int64(400000), int64(0),
		string(status), now, now,
	)
}

func testWindow() (time.Time, time.Time) {
	in := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	return in, in.Add(48 * time.Hour)
}

func TestCreateIfAvailableRejectsOverlap(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepository(db)
	in, out := testWindow()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM rooms WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("booked"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs(int64(3), in, out).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	err := repo.CreateIfAvailable(context.Background(), &models.Booking{RoomID: 3, CheckIn: in, CheckOut: out}, nil)

	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIfAvailableRejectsMaintenance(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepository(db)
	in, out := testWindow()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("maintenance"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	err := repo.CreateIfAvailable(context.Background(), &models.Booking{RoomID: 3, CheckIn: in, CheckOut: out}, nil)

	assert.ErrorIs(t, err, ErrRoomUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIfAvailableUnknownRoom(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepository(db)
	in, out := testWindow()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.CreateIfAvailable(context.Background(), &models.Booking{RoomID: 99, CheckIn: in, CheckOut: out}, nil)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIfAvailableMapsExclusionViolation(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepository(db)
	in, out := testWindow()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("available"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO bookings`)).
		WillReturnError(&pq.Error{Code: "23P01", Constraint: "bookings_no_overlap"})
	mock.ExpectRollback()

	err := repo.CreateIfAvailable(context.Background(), &models.Booking{RoomID: 3, CheckIn: in, CheckOut: out}, nil)

	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIfAvailablePrepaidMarksRoomBooked(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepository(db)
	in, out := testWindow()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("available"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO bookings`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(41), now, now))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO booking_services`)).
		WithArgs(int64(41), int64(5), 2, int64(15000)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "added_at"}).AddRow(int64(1), now))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE rooms SET status = 'booked'`)).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	booking := &models.Booking{RoomID: 3, CheckIn: in, CheckOut: out, PaymentMethod: models.PaymentCard}
	lines := []models.BookingService{{ServiceID: 5, Quantity: 2, UnitPrice: 15000}}
	err := repo.CreateIfAvailable(context.Background(), booking, lines)

	require.NoError(t, err)
	assert.Equal(t, int64(41), booking.ID)
	require.Len(t, booking.Services, 1)
	assert.Equal(t, int64(41), booking.Services[0].BookingID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusDetectsStaleStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepository(db)
	in, out := testWindow()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT room_id FROM bookings`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"room_id"}).AddRow(int64(3)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM rooms WHERE id = $1 FOR UPDATE`)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("booked"))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM bookings WHERE id = $1 FOR UPDATE`)).
		WillReturnRows(bookingRow(7, models.BookingCancelled, in, out))
	mock.ExpectRollback()

	_, err := repo.UpdateStatus(context.Background(), 7, models.BookingPending, models.BookingDepositPaid)

	assert.ErrorIs(t, err, ErrStaleStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusCancelReleasesRoom(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepository(db)
	in, out := testWindow()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT room_id FROM bookings`)).
		WillReturnRows(sqlmock.NewRows([]string{"room_id"}).AddRow(int64(3)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM rooms WHERE id = $1 FOR UPDATE`)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("booked"))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM bookings WHERE id = $1 FOR UPDATE`)).
		WillReturnRows(bookingRow(7, models.BookingConfirmed, in, out))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE bookings SET status = $1`)).
		WithArgs("cancelled", "pending", int64(7), "confirmed").
		WillReturnRows(bookingRow(7, models.BookingCancelled, in, out))
	mock.ExpectQuery(regexp.QuoteMeta(`status NOT IN ('cancelled', 'completed')`)).
		WithArgs(int64(3), int64(7), in, out).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE rooms SET status = $1`)).
		WithArgs("available", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM booking_services`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "service_id", "quantity", "unit_price", "added_at"}))
	mock.ExpectCommit()

	booking, err := repo.UpdateStatus(context.Background(), 7, models.BookingConfirmed, models.BookingCancelled)

	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, booking.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusCompleteKeepsRoomWhenWindowStillHeld(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepository(db)
	in, out := testWindow()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT room_id FROM bookings`)).
		WillReturnRows(sqlmock.NewRows([]string{"room_id"}).AddRow(int64(3)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM rooms WHERE id = $1 FOR UPDATE`)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("booked"))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM bookings WHERE id = $1 FOR UPDATE`)).
		WillReturnRows(bookingRow(7, models.BookingConfirmed, in, out))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE bookings SET status = $1`)).
		WithArgs("completed", "paid", int64(7), "confirmed").
		WillReturnRows(bookingRow(7, models.BookingCompleted, in, out))
	mock.ExpectQuery(regexp.QuoteMeta(`check_in < $4 AND check_out > $3`)).
		WithArgs(int64(3), int64(7), in, out).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM booking_services`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "service_id", "quantity", "unit_price", "added_at"}))
	mock.ExpectCommit()

	_, err := repo.UpdateStatus(context.Background(), 7, models.BookingConfirmed, models.BookingCompleted)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingGetByIDMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM bookings WHERE id = $1`)).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(bookingRowColumns))

	booking, err := repo.GetByID(context.Background(), 404)

	assert.NoError(t, err)
	assert.Nil(t, booking)
}

func TestCurrentGuests(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SUM(guests)`)).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(5))

	guests, err := repo.CurrentGuests(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, 5, guests)
}

func TestPromotionRedeemStopsAtUsageLimit(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPromotionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE promotional_codes SET used_count = used_count + 1`)).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"per_user_limit"}))
	mock.ExpectRollback()

	err := repo.Redeem(context.Background(), &models.PromoCodeUsage{PromoCodeID: 2, UserID: 1, BookingID: 9})

	assert.ErrorIs(t, err, ErrUsageLimit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromotionRedeemMapsCapViolation(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPromotionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE promotional_codes`)).
		WillReturnError(&pq.Error{Code: "23514", Constraint: "promotional_codes_usage_cap"})
	mock.ExpectRollback()

	err := repo.Redeem(context.Background(), &models.PromoCodeUsage{PromoCodeID: 2, UserID: 1, BookingID: 9})

	assert.ErrorIs(t, err, ErrUsageLimit)
}

func TestPromotionRedeemPerUserLimit(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPromotionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE promotional_codes`)).
		WillReturnRows(sqlmock.NewRows([]string{"per_user_limit"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM promotional_code_usages`)).
		WithArgs(int64(2), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.Redeem(context.Background(), &models.PromoCodeUsage{PromoCodeID: 2, UserID: 1, BookingID: 9})

	assert.ErrorIs(t, err, ErrPerUserLimit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromotionRedeemRejectsSecondDiscount(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPromotionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE promotional_codes`)).
		WillReturnRows(sqlmock.NewRows([]string{"per_user_limit"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO promotional_code_usages`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "used_at"}).AddRow(int64(5), time.Now()))
	mock.ExpectExec(regexp.QuoteMeta(`WHERE id = $2 AND discount_amount = 0`)).
		WithArgs(int64(20000), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`)).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	err := repo.Redeem(context.Background(), &models.PromoCodeUsage{PromoCodeID: 2, UserID: 1, BookingID: 9, DiscountAmount: 20000})

	assert.ErrorIs(t, err, ErrAlreadyDiscounted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromotionRedeemUnknownBooking(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPromotionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE promotional_codes`)).
		WillReturnRows(sqlmock.NewRows([]string{"per_user_limit"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO promotional_code_usages`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "used_at"}).AddRow(int64(5), time.Now()))
	mock.ExpectExec(regexp.QuoteMeta(`discount_amount = 0`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM bookings`)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	err := repo.Redeem(context.Background(), &models.PromoCodeUsage{PromoCodeID: 2, UserID: 1, BookingID: 9, DiscountAmount: 20000})

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoyaltyRedeemInsufficientPoints(t *testing.T) {
	db, mock := newMock(t)
	repo := NewLoyaltyRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO loyalty_points`)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM loyalty_points WHERE user_id = $1 FOR UPDATE`)).
		WillReturnRows(sqlmock.NewRows([]string{"current_points", "total_earned", "updated_at"}).AddRow(int64(0), int64(0), time.Now()))
	mock.ExpectRollback()

	acc, err := repo.Redeem(context.Background(), &models.PointTransaction{UserID: 1, Points: 500})

	assert.ErrorIs(t, err, ErrInsufficientPoints)
	assert.Equal(t, int64(0), acc.CurrentPoints)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoyaltyEarnIsOncePerBooking(t *testing.T) {
	db, mock := newMock(t)
	repo := NewLoyaltyRepository(db)
	bookingID := int64(7)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO loyalty_points`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WillReturnRows(sqlmock.NewRows([]string{"current_points", "total_earned", "updated_at"}).AddRow(int64(40), int64(40), time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM point_transactions`)).
		WithArgs(bookingID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	acc, applied, err := repo.Earn(context.Background(), &models.PointTransaction{UserID: 1, Points: 40, BookingID: &bookingID})

	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, int64(40), acc.CurrentPoints)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoyaltyEarnCreditsAccount(t *testing.T) {
	db, mock := newMock(t)
	repo := NewLoyaltyRepository(db)
	bookingID := int64(7)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO loyalty_points`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WillReturnRows(sqlmock.NewRows([]string{"current_points", "total_earned", "updated_at"}).AddRow(int64(0), int64(0), now))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO point_transactions`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), now))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE loyalty_points`)).
		WithArgs(int64(40), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"current_points", "total_earned", "updated_at"}).AddRow(int64(40), int64(40), now))
	mock.ExpectCommit()

	pt := &models.PointTransaction{UserID: 1, Points: 40, BookingID: &bookingID}
	acc, applied, err := repo.Earn(context.Background(), pt)

	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, models.PointsEarned, pt.Type)
	assert.Equal(t, int64(40), acc.TotalEarned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewCreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReviewRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO reviews`)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "reviews_booking_id_key"})

	err := repo.Create(context.Background(), &models.Review{BookingID: 7, Rating: 5})

	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestRoomRatingRoundsAverage(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReviewRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`AVG(rating)`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"avg", "count"}).AddRow(4.333333, 3))

	rating, err := repo.RoomRating(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, 4.33, rating.AverageRating)
	assert.Equal(t, 3, rating.TotalReviews)
}

func TestRoomListAppliesFilters(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRoomRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`AND type = $1 AND capacity >= $2 ORDER BY number LIMIT $3 OFFSET $4`)).
		WithArgs("suite", 2, 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "number", "type", "price", "capacity", "status", "description", "amenities", "created_at", "updated_at"}).
			AddRow(int64(1), "101", "suite", int64(200000), 2, "available", nil, []byte("{wifi,tv}"), now, now))

	rooms, err := repo.List(context.Background(), models.RoomFilter{Type: "suite", MinCapacity: 2, Page: 2, PageSize: 10})

	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, []string{"wifi", "tv"}, rooms[0].Amenities)
}
