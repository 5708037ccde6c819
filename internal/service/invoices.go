package service

import (
	"context"
	"fmt"
	"strings"

	apperrors "hotelier/internal/errors"
	"hotelier/internal/models"

	"github.com/google/uuid"
)

type InvoiceService struct {
	invoices   InvoiceStore
	bookings   BookingStore
	taxPercent int64
}

func NewInvoiceService(invoices InvoiceStore, bookings BookingStore, taxPercent int64) *InvoiceService {
	return &InvoiceService{invoices: invoices, bookings: bookings, taxPercent: taxPercent}
}

// Compute derives invoice amounts from a booking. Tax applies to the gross amount;
// the discount is subtracted afterwards and the total never goes below zero.
func Compute(b *models.Booking, taxPercent int64) models.Invoice {
	gross := b.RoomTotal + b.ServicesTotal
	tax := gross * taxPercent / 100
	return models.Invoice{
		BookingID:      b.ID,
		RoomTotal:      b.RoomTotal,
		ServicesTotal:  b.ServicesTotal,
		TaxAmount:      tax,
		DiscountAmount: b.DiscountAmount,
		TotalAmount:    max(0, gross+tax-b.DiscountAmount),
	}
}

// Generate issues the invoice for a booking, or refreshes the existing one.
func (s *InvoiceService) Generate(ctx context.Context, bookingID int64) (*models.Invoice, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, apperrors.NotFound("booking", bookingID)
	}
	if booking.Status == models.BookingCancelled {
		return nil, apperrors.NotEligible("cannot invoice cancelled booking %d", bookingID)
	}

	inv := Compute(booking, s.taxPercent)
	inv.InvoiceNumber = "INV-" + strings.ToUpper(uuid.New().String()[:8])

	if err := s.invoices.Upsert(ctx, &inv); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}
	return &inv, nil
}

func (s *InvoiceService) Get(ctx context.Context, bookingID int64) (*models.Invoice, error) {
	inv, err := s.invoices.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	if inv == nil {
		return nil, apperrors.NotFound("invoice for booking", bookingID)
	}
	return inv, nil
}
