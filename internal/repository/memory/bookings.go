package memory

import (
	"context"
	"sort"
	"time"

	"hotelier/internal/models"
	"hotelier/internal/repository"
)

type Bookings struct{ s *Store }

// overlapping reports a non-cancelled booking of roomID intersecting the window.
func (s *Store) overlapping(roomID int64, in, out time.Time) bool {
	for _, b := range s.bookings {
		if b.RoomID == roomID && b.Status.BlocksWindow() && models.Overlaps(b.CheckIn, b.CheckOut, in, out) {
			return true
		}
	}
	return false
}

// activeOverlap reports another open booking of roomID intersecting the window.
func (s *Store) activeOverlap(roomID, exclude int64, in, out time.Time) bool {
	for _, b := range s.bookings {
		if b.RoomID == roomID && b.ID != exclude && b.Status.HoldsRoom() && models.Overlaps(b.CheckIn, b.CheckOut, in, out) {
			return true
		}
	}
	return false
}

// reserved reports a booking keeping the room booked for a current or future stay.
func (s *Store) reserved(roomID int64) bool {
	now := s.now()
	for _, b := range s.bookings {
		if b.RoomID == roomID && b.CheckOut.After(now) && b.ReservesRoom() {
			return true
		}
	}
	return false
}

func (s *Store) bookingCopy(b models.Booking) *models.Booking {
	b.Services = append([]models.BookingService{}, s.bookingServices[b.ID]...)
	return &b
}

func (r *Bookings) CreateIfAvailable(_ context.Context, booking *models.Booking, lines []models.BookingService) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	room, ok := r.s.rooms[booking.RoomID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.s.overlapping(booking.RoomID, booking.CheckIn, booking.CheckOut) {
		return repository.ErrConflict
	}
	if room.Status == models.RoomMaintenance {
		return repository.ErrRoomUnavailable
	}

	booking.ID = r.s.nextID()
	booking.CreatedAt = r.s.now()
	booking.UpdatedAt = booking.CreatedAt

	booking.Services = make([]models.BookingService, 0, len(lines))
	for _, line := range lines {
		line.ID = r.s.nextID()
		line.BookingID = booking.ID
		line.AddedAt = booking.CreatedAt
		booking.Services = append(booking.Services, line)
	}
	r.s.bookingServices[booking.ID] = append([]models.BookingService{}, booking.Services...)

	stored := *booking
	stored.Services = nil
	r.s.bookings[booking.ID] = stored

	if booking.PaymentMethod.Prepaid() {
		room.Status = models.RoomBooked
		room.UpdatedAt = booking.CreatedAt
		r.s.rooms[room.ID] = room
	}
	return nil
}

func (r *Bookings) HasOverlap(_ context.Context, roomID int64, checkIn, checkOut time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.overlapping(roomID, checkIn, checkOut), nil
}

func (r *Bookings) GetByID(_ context.Context, id int64) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, nil
	}
	return r.s.bookingCopy(b), nil
}

func (r *Bookings) GetByUserID(_ context.Context, userID int64) ([]models.Booking, error) {
	return r.filter(func(b models.Booking) bool { return b.UserID == userID }, true), nil
}

func (r *Bookings) ListExpiredPending(_ context.Context, before time.Time) ([]models.Booking, error) {
	return r.filter(func(b models.Booking) bool {
		return b.Status == models.BookingPending && b.CreatedAt.Before(before)
	}, false), nil
}

func (r *Bookings) filter(keep func(models.Booking) bool, newestFirst bool) []models.Booking {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Booking{}
	for _, b := range r.s.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *Bookings) UpdateStatus(_ context.Context, id int64, from, to models.BookingStatus) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if b.Status != from {
		return nil, repository.ErrStaleStatus
	}

	b.PaymentStatus = models.PaymentStatusFor(to, b.PaymentStatus)
	b.Status = to
	b.UpdatedAt = r.s.now()
	r.s.bookings[id] = b

	room := r.s.rooms[b.RoomID]
	otherActive := r.s.activeOverlap(b.RoomID, b.ID, b.CheckIn, b.CheckOut)
	if next := models.RoomStatusAfter(to, room.Status, otherActive); next != room.Status {
		room.Status = next
		room.UpdatedAt = b.UpdatedAt
		r.s.rooms[room.ID] = room
	}
	return r.s.bookingCopy(b), nil
}

func (r *Bookings) AddService(_ context.Context, line *models.BookingService) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[line.BookingID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !b.Status.HoldsRoom() {
		return nil, repository.ErrStaleStatus
	}

	line.ID = r.s.nextID()
	line.AddedAt = r.s.now()
	r.s.bookingServices[b.ID] = append(r.s.bookingServices[b.ID], *line)

	b.ServicesTotal += line.Total()
	b.TotalPrice += line.Total()
	b.UpdatedAt = line.AddedAt
	r.s.bookings[b.ID] = b
	return r.s.bookingCopy(b), nil
}

func (r *Bookings) CountByStatus(_ context.Context) (map[models.BookingStatus]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[models.BookingStatus]int{}
	for _, b := range r.s.bookings {
		counts[b.Status]++
	}
	return counts, nil
}

func (r *Bookings) CurrentGuests(_ context.Context, now time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	guests := 0
	for _, b := range r.s.bookings {
		if b.Status == models.BookingConfirmed && b.Covers(now) {
			guests += b.Guests
		}
	}
	return guests, nil
}
