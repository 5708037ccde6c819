package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"hotelier/internal/middleware"
	"hotelier/internal/models"
	"hotelier/internal/repository/memory"
	"hotelier/internal/service"
	"hotelier/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testAPI struct {
	router   *gin.Engine
	store    *memory.Store
	sessions *session.Manager
}

func setupAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.New()
	sessions := session.NewManager(session.NewMemoryStore(), "test-secret", time.Hour)
	services := service.NewServices(service.Stores{
		Users:      store.Users(),
		Rooms:      store.Rooms(),
		Bookings:   store.Bookings(),
		Services:   store.Services(),
		Reviews:    store.Reviews(),
		Loyalty:    store.Loyalty(),
		Promotions: store.Promotions(),
		Invoices:   store.Invoices(),
	}, service.Deps{Sessions: sessions}, service.Options{PointsPerCurrencyUnit: 10_000, TaxPercent: 10})

	r := gin.New()
	r.Use(middleware.RequestID())
	NewHandlers(services).Routes(r.Group("/api"), middleware.Auth(sessions))

	return &testAPI{router: r, store: store, sessions: sessions}
}

// token creates a user directly in the store and opens a session for it.
func (a *testAPI) token(t *testing.T, email string, role models.Role) (string, *models.User) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Email: email, PasswordHash: string(hash), FullName: "Test", Role: role, IsActive: true}
	require.NoError(t, a.store.Users().Create(context.Background(), user))
	token, _, err := a.sessions.Issue(context.Background(), user)
	require.NoError(t, err)
	return token, user
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (a *testAPI) createRoom(t *testing.T, adminToken, number string) models.Room {
	t.Helper()
	w := a.do(http.MethodPost, "/api/rooms", adminToken, models.CreateRoomRequest{
		Number: number, Type: "double", Price: 200_000, Capacity: 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Room](t, w)
}

func bookingBody(roomID int64, in, out string) map[string]interface{} {
	return map[string]interface{}{
		"room_id":        roomID,
		"check_in":       in + "T14:00:00Z",
		"check_out":      out + "T12:00:00Z",
		"guests":         2,
		"payment_method": "card",
	}
}

func TestRegisterLoginLogout(t *testing.T) {
	a := setupAPI(t)

	w := a.do(http.MethodPost, "/api/auth/register", "", models.RegisterRequest{
		Email: "ana@example.com", Password: "s3cret-pass", FullName: "Ana",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")

	w = a.do(http.MethodPost, "/api/auth/register", "", models.RegisterRequest{
		Email: "ana@example.com", Password: "s3cret-pass", FullName: "Ana",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(http.MethodPost, "/api/auth/login", "", models.LoginRequest{Email: "ana@example.com", Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(http.MethodPost, "/api/auth/login", "", models.LoginRequest{Email: "ana@example.com", Password: "s3cret-pass"})
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[models.LoginResponse](t, w)
	require.NotEmpty(t, login.Token)

	w = a.do(http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ana@example.com", decode[models.User](t, w).Email)

	w = a.do(http.MethodPost, "/api/auth/logout", login.Token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = a.do(http.MethodGet, "/api/auth/me", login.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	a := setupAPI(t)
	guest, _ := a.token(t, "guest@example.com", models.RoleCustomer)

	w := a.do(http.MethodPost, "/api/rooms", "", models.CreateRoomRequest{Number: "101", Type: "double", Price: 1, Capacity: 1})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(http.MethodPost, "/api/rooms", guest, models.CreateRoomRequest{Number: "101", Type: "double", Price: 1, Capacity: 1})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodGet, "/api/admin/dashboard", guest, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBookingFlow(t *testing.T) {
	a := setupAPI(t)
	admin, _ := a.token(t, "admin@example.com", models.RoleAdmin)
	guest, _ := a.token(t, "guest@example.com", models.RoleCustomer)
	room := a.createRoom(t, admin, "101")

	w := a.do(http.MethodPost, "/api/bookings", guest, bookingBody(room.ID, "2030-06-01", "2030-06-03"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	booking := decode[models.Booking](t, w)
	assert.Equal(t, int64(400_000), booking.TotalPrice)
	assert.Equal(t, models.BookingPending, booking.Status)

	w = a.do(http.MethodPost, "/api/bookings", guest, bookingBody(room.ID, "2030-06-02", "2030-06-04"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", decode[models.ErrorBody](t, w).Error.Code)

	w = a.do(http.MethodGet, "/api/rooms/"+itoa(room.ID)+"/availability?check_in=2030-06-04&check_out=2030-06-06", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[models.AvailabilityResponse](t, w).Available)

	// Guests cannot move their own booking through payment states.
	w = a.do(http.MethodPatch, "/api/bookings/"+itoa(booking.ID)+"/status", guest, models.TransitionRequest{Status: "confirmed"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodPatch, "/api/bookings/"+itoa(booking.ID)+"/status", admin, models.TransitionRequest{Status: "confirmed"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", decode[models.ErrorBody](t, w).Error.Code)

	w = a.do(http.MethodPatch, "/api/bookings/"+itoa(booking.ID)+"/status", admin, models.TransitionRequest{Status: "checked_in"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPost, "/api/bookings/"+itoa(booking.ID)+"/invoice", guest, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(440_000), decode[models.Invoice](t, w).TotalAmount)

	w = a.do(http.MethodPatch, "/api/bookings/"+itoa(booking.ID)+"/status", guest, models.TransitionRequest{Status: "cancelled"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.BookingCancelled, decode[models.Booking](t, w).Status)

	w = a.do(http.MethodGet, "/api/bookings", guest, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Booking](t, w), 1)
}

func TestBookingsAreHiddenFromOtherUsers(t *testing.T) {
	a := setupAPI(t)
	admin, _ := a.token(t, "admin@example.com", models.RoleAdmin)
	owner, _ := a.token(t, "owner@example.com", models.RoleCustomer)
	other, _ := a.token(t, "other@example.com", models.RoleCustomer)
	room := a.createRoom(t, admin, "101")

	w := a.do(http.MethodPost, "/api/bookings", owner, bookingBody(room.ID, "2030-06-01", "2030-06-03"))
	require.Equal(t, http.StatusCreated, w.Code)
	booking := decode[models.Booking](t, w)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/bookings/"+itoa(booking.ID), other, nil).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/bookings/"+itoa(booking.ID), owner, nil).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/bookings/"+itoa(booking.ID), admin, nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/bookings/abc", owner, nil).Code)
}

func TestBindingValidation(t *testing.T) {
	a := setupAPI(t)
	guest, _ := a.token(t, "guest@example.com", models.RoleCustomer)

	body := bookingBody(1, "2030-06-01", "2030-06-03")
	body["payment_method"] = "bitcoin"
	w := a.do(http.MethodPost, "/api/bookings", guest, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode[models.ErrorBody](t, w).Error.Code)

	w = a.do(http.MethodPost, "/api/bookings", guest, bookingBody(999, "2030-06-01", "2030-06-03"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPromotionsAndLoyalty(t *testing.T) {
	a := setupAPI(t)
	admin, _ := a.token(t, "admin@example.com", models.RoleAdmin)
	guest, _ := a.token(t, "guest@example.com", models.RoleCustomer)
	room := a.createRoom(t, admin, "101")

	maxDiscount := int64(100_000)
	w := a.do(http.MethodPost, "/api/promotions", admin, models.CreatePromoRequest{
		Code: "SUMMER10", DiscountType: models.DiscountPercentage, DiscountValue: 10, MaxDiscount: &maxDiscount,
		ValidFrom: time.Now().Add(-time.Hour), ValidTo: time.Now().Add(24 * time.Hour), UsageLimit: 5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/api/promotions/validate", guest, models.ValidatePromoRequest{Code: "SUMMER10", Subtotal: 2_000_000})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(100_000), decode[models.ValidatePromoResponse](t, w).DiscountAmount)

	w = a.do(http.MethodPost, "/api/promotions/validate", guest, models.ValidatePromoRequest{Code: "NOPE", Subtotal: 100})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodPost, "/api/bookings", guest, bookingBody(room.ID, "2030-06-01", "2030-06-03"))
	require.Equal(t, http.StatusCreated, w.Code)
	booking := decode[models.Booking](t, w)

	w = a.do(http.MethodPost, "/api/promotions/apply", guest, models.ApplyPromoRequest{Code: "SUMMER10", BookingID: booking.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(40_000), decode[models.Booking](t, w).DiscountAmount)

	w = a.do(http.MethodGet, "/api/loyalty", guest, nil)
	require.Equal(t, http.StatusOK, w.Code)
	balance := decode[models.Balance](t, w)
	assert.Equal(t, int64(0), balance.CurrentPoints)
	assert.Equal(t, models.LevelBronze, balance.CurrentLevel)

	w = a.do(http.MethodPost, "/api/loyalty/redeem", guest, models.RedeemPointsRequest{RewardID: "spa", Points: 500})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INSUFFICIENT_POINTS", decode[models.ErrorBody](t, w).Error.Code)
}

func TestReviewsAndRating(t *testing.T) {
	a := setupAPI(t)
	admin, _ := a.token(t, "admin@example.com", models.RoleAdmin)
	guest, _ := a.token(t, "guest@example.com", models.RoleCustomer)
	room := a.createRoom(t, admin, "101")

	w := a.do(http.MethodGet, "/api/rooms/"+itoa(room.ID)+"/rating", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"room_id":`+itoa(room.ID)+`,"average_rating":0,"total_reviews":0}`, w.Body.String())

	w = a.do(http.MethodPost, "/api/bookings", guest, bookingBody(room.ID, "2030-06-01", "2030-06-03"))
	require.Equal(t, http.StatusCreated, w.Code)
	booking := decode[models.Booking](t, w)

	w = a.do(http.MethodPost, "/api/reviews", guest, models.SubmitReviewRequest{BookingID: booking.ID, Rating: 5})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	for _, status := range []string{"deposit_paid", "confirmed", "completed"} {
		w = a.do(http.MethodPatch, "/api/bookings/"+itoa(booking.ID)+"/status", admin, models.TransitionRequest{Status: status})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w = a.do(http.MethodPost, "/api/reviews", guest, models.SubmitReviewRequest{BookingID: booking.ID, Rating: 5})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/api/reviews", guest, models.SubmitReviewRequest{BookingID: booking.ID, Rating: 4})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_REVIEW", decode[models.ErrorBody](t, w).Error.Code)

	w = a.do(http.MethodGet, "/api/rooms/"+itoa(room.ID)+"/rating", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rating := decode[models.RoomRating](t, w)
	assert.Equal(t, 5.0, rating.AverageRating)
	assert.Equal(t, 1, rating.TotalReviews)

	w = a.do(http.MethodGet, "/api/loyalty", guest, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(40), decode[models.Balance](t, w).CurrentPoints)
}

func TestDashboard(t *testing.T) {
	a := setupAPI(t)
	admin, _ := a.token(t, "admin@example.com", models.RoleAdmin)
	a.createRoom(t, admin, "101")
	a.createRoom(t, admin, "102")

	w := a.do(http.MethodGet, "/api/admin/dashboard", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	dash := decode[models.Dashboard](t, w)
	assert.Equal(t, 2, dash.RoomsByStatus[models.RoomAvailable])
	assert.Equal(t, 0, dash.CurrentGuests)
}
