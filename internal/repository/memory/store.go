// Package memory is an in-process implementation of the repository contracts,
// used by service and handler tests. A single mutex serializes every operation,
// standing in for the row locks and constraints of the PostgreSQL repositories.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"hotelier/internal/models"
	"hotelier/internal/repository"
)

type Store struct {
	mu  sync.Mutex
	seq int64
	now func() time.Time

	users           map[int64]models.User
	rooms           map[int64]models.Room
	bookings        map[int64]models.Booking
	bookingServices map[int64][]models.BookingService
	services        map[int64]models.Service
	reviews         map[int64]models.Review
	accounts        map[int64]models.LoyaltyAccount
	pointTxs        []models.PointTransaction
	promos          map[int64]models.PromoCode
	usages          []models.PromoCodeUsage
	invoices        map[int64]models.Invoice
}

func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock returns a store that stamps records and evaluates "current or
// future" stays with now.
func NewWithClock(now func() time.Time) *Store {
	return &Store{
		now:             now,
		users:           map[int64]models.User{},
		rooms:           map[int64]models.Room{},
		bookings:        map[int64]models.Booking{},
		bookingServices: map[int64][]models.BookingService{},
		services:        map[int64]models.Service{},
		reviews:         map[int64]models.Review{},
		accounts:        map[int64]models.LoyaltyAccount{},
		promos:          map[int64]models.PromoCode{},
		invoices:        map[int64]models.Invoice{},
	}
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *Store) Users() *Users           { return &Users{s} }
func (s *Store) Rooms() *Rooms           { return &Rooms{s} }
func (s *Store) Bookings() *Bookings     { return &Bookings{s} }
func (s *Store) Services() *Services     { return &Services{s} }
func (s *Store) Reviews() *Reviews       { return &Reviews{s} }
func (s *Store) Loyalty() *Loyalty       { return &Loyalty{s} }
func (s *Store) Promotions() *Promotions { return &Promotions{s} }
func (s *Store) Invoices() *Invoices     { return &Invoices{s} }

// SetBookingCreatedAt backdates a booking, for expiry tests.
func (s *Store) SetBookingCreatedAt(id int64, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.bookings[id]; ok {
		b.CreatedAt = at
		s.bookings[id] = b
	}
}

// Users

type Users struct{ s *Store }

func (r *Users) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("%w: email %s", repository.ErrDuplicate, user.Email)
		}
	}
	user.ID = r.s.nextID()
	user.RegisteredAt = r.s.now()
	if user.Preferences == nil {
		user.Preferences = []string{}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *Users) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

// Rooms

type Rooms struct{ s *Store }

func (r *Rooms) Create(_ context.Context, room *models.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.rooms {
		if existing.Number == room.Number {
			return fmt.Errorf("%w: room %s", repository.ErrDuplicate, room.Number)
		}
	}
	room.ID = r.s.nextID()
	room.CreatedAt = r.s.now()
	room.UpdatedAt = room.CreatedAt
	if room.Status == "" {
		room.Status = models.RoomAvailable
	}
	if room.Amenities == nil {
		room.Amenities = []string{}
	}
	r.s.rooms[room.ID] = *room
	return nil
}

func (r *Rooms) GetByID(_ context.Context, id int64) (*models.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room, ok := r.s.rooms[id]
	if !ok {
		return nil, nil
	}
	return &room, nil
}

func (r *Rooms) List(_ context.Context, filter models.RoomFilter) ([]models.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rooms := []models.Room{}
	for _, room := range r.s.rooms {
		if filter.Type != "" && room.Type != filter.Type {
			continue
		}
		if filter.MinCapacity > 0 && room.Capacity < filter.MinCapacity {
			continue
		}
		if filter.MaxPrice > 0 && room.Price > filter.MaxPrice {
			continue
		}
		if filter.Status != "" && room.Status != filter.Status {
			continue
		}
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Number < rooms[j].Number })

	if filter.Page > 0 && filter.PageSize > 0 {
		start := (filter.Page - 1) * filter.PageSize
		if start >= len(rooms) {
			return []models.Room{}, nil
		}
		end := min(start+filter.PageSize, len(rooms))
		rooms = rooms[start:end]
	}
	return rooms, nil
}

func (r *Rooms) SetMaintenance(_ context.Context, id int64, on bool) (*models.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room, ok := r.s.rooms[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if on {
		room.Status = models.RoomMaintenance
	} else {
		room.Status = models.RoomAvailable
		if r.s.reserved(id) {
			room.Status = models.RoomBooked
		}
	}
	room.UpdatedAt = r.s.now()
	r.s.rooms[id] = room
	return &room, nil
}

func (r *Rooms) CountByStatus(_ context.Context) (map[models.RoomStatus]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[models.RoomStatus]int{
		models.RoomAvailable:   0,
		models.RoomBooked:      0,
		models.RoomMaintenance: 0,
	}
	for _, room := range r.s.rooms {
		counts[room.Status]++
	}
	return counts, nil
}
