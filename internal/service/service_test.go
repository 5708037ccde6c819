package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"hotelier/internal/models"
	"hotelier/internal/repository/memory"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *recordingPublisher) Publish(subject string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *recordingPublisher) count(subject string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, s := range p.subjects {
		if s == subject {
			n++
		}
	}
	return n
}

type fakeSessions struct {
	revoked []string
}

func (f *fakeSessions) Issue(_ context.Context, user *models.User) (string, time.Time, error) {
	return "token-" + user.Email, time.Now().Add(time.Hour), nil
}

func (f *fakeSessions) Revoke(_ context.Context, sessionID string) error {
	f.revoked = append(f.revoked, sessionID)
	return nil
}

type fixture struct {
	store    *memory.Store
	svc      *Services
	pub      *recordingPublisher
	sessions *fakeSessions
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithCache(t, nil)
}

func newFixtureWithCache(t *testing.T, cache RatingCache) *fixture {
	t.Helper()
	f := &fixture{
		pub:      &recordingPublisher{},
		sessions: &fakeSessions{},
		now:      time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC),
	}
	f.store = memory.NewWithClock(func() time.Time { return f.now })
	stores := Stores{
		Users:      f.store.Users(),
		Rooms:      f.store.Rooms(),
		Bookings:   f.store.Bookings(),
		Services:   f.store.Services(),
		Reviews:    f.store.Reviews(),
		Loyalty:    f.store.Loyalty(),
		Promotions: f.store.Promotions(),
		Invoices:   f.store.Invoices(),
	}
	f.svc = NewServices(stores,
		Deps{Publisher: f.pub, Sessions: f.sessions, RatingCache: cache},
		Options{PointsPerCurrencyUnit: 10_000, TaxPercent: 10, Now: func() time.Time { return f.now }})
	f.svc.Users.cost = bcrypt.MinCost
	return f
}

func (f *fixture) room(t *testing.T, number string, price int64, capacity int) *models.Room {
	t.Helper()
	room, err := f.svc.Rooms.Create(context.Background(), &models.CreateRoomRequest{
		Number: number, Type: "double", Price: price, Capacity: capacity,
	})
	require.NoError(t, err)
	return room
}

func (f *fixture) user(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, FullName: "Guest", Role: models.RoleCustomer, IsActive: true}
	require.NoError(t, f.store.Users().Create(context.Background(), user))
	return user
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func (f *fixture) book(t *testing.T, userID, roomID int64, in, out string, method models.PaymentMethod) *models.Booking {
	t.Helper()
	booking, err := f.svc.Bookings.Create(context.Background(), &models.CreateBookingRequest{
		UserID: userID, RoomID: roomID, CheckIn: day(in), CheckOut: day(out), Guests: 2, PaymentMethod: string(method),
	})
	require.NoError(t, err)
	return booking
}

// complete walks a booking through the whole lifecycle.
func (f *fixture) complete(t *testing.T, id int64) *models.Booking {
	t.Helper()
	var b *models.Booking
	for _, st := range []models.BookingStatus{models.BookingDepositPaid, models.BookingConfirmed, models.BookingCompleted} {
		var err error
		b, err = f.svc.Bookings.Transition(context.Background(), id, string(st))
		require.NoError(t, err)
	}
	return b
}
