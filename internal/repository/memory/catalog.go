package memory

import (
	"context"
	"fmt"
	"sort"

	"hotelier/internal/models"
	"hotelier/internal/repository"
)

// Services

type Services struct{ s *Store }

func (r *Services) Create(_ context.Context, service *models.Service) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	service.ID = r.s.nextID()
	service.CreatedAt = r.s.now()
	r.s.services[service.ID] = *service
	return nil
}

func (r *Services) GetByID(_ context.Context, id int64) (*models.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	svc, ok := r.s.services[id]
	if !ok {
		return nil, nil
	}
	return &svc, nil
}

func (r *Services) List(_ context.Context, activeOnly bool) ([]models.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Service{}
	for _, svc := range r.s.services {
		if activeOnly && !svc.IsActive {
			continue
		}
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Reviews

type Reviews struct{ s *Store }

func (r *Reviews) Create(_ context.Context, review *models.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.reviews {
		if existing.BookingID == review.BookingID {
			return fmt.Errorf("%w: review for booking %d", repository.ErrDuplicate, review.BookingID)
		}
	}
	review.ID = r.s.nextID()
	review.CreatedAt = r.s.now()
	r.s.reviews[review.ID] = *review
	return nil
}

func (r *Reviews) GetByBookingID(_ context.Context, bookingID int64) (*models.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rv := range r.s.reviews {
		if rv.BookingID == bookingID {
			return &rv, nil
		}
	}
	return nil, nil
}

func (r *Reviews) ListByRoom(_ context.Context, roomID int64) ([]models.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Review{}
	for _, rv := range r.s.reviews {
		if rv.RoomID == roomID {
			out = append(out, rv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *Reviews) RoomRating(ctx context.Context, roomID int64) (models.RoomRating, error) {
	reviews, _ := r.ListByRoom(ctx, roomID)
	return models.AggregateRatings(roomID, reviews), nil
}

// Invoices

type Invoices struct{ s *Store }

func (r *Invoices) Upsert(_ context.Context, inv *models.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.invoices[inv.BookingID]; ok {
		inv.ID = existing.ID
		inv.InvoiceNumber = existing.InvoiceNumber
	} else {
		inv.ID = r.s.nextID()
	}
	inv.IssuedAt = r.s.now()
	r.s.invoices[inv.BookingID] = *inv
	return nil
}

func (r *Invoices) GetByBookingID(_ context.Context, bookingID int64) (*models.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[bookingID]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}
