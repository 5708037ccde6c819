package repository

import (
	"context"
	"database/sql"
	"errors"

	"hotelier/internal/database"
	"hotelier/internal/models"
)

type InvoiceRepository struct {
	db *database.DB
}

func NewInvoiceRepository(db *database.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Upsert writes the invoice for its booking. An existing invoice keeps its number
// and gets refreshed amounts.
func (r *InvoiceRepository) Upsert(ctx context.Context, inv *models.Invoice) error {
	query := `
		INSERT INTO invoices (invoice_number, booking_id, room_total, services_total, tax_amount,
		                      discount_amount, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (booking_id) DO UPDATE SET
			room_total = EXCLUDED.room_total,
			services_total = EXCLUDED.services_total,
			tax_amount = EXCLUDED.tax_amount,
			discount_amount = EXCLUDED.discount_amount,
			total_amount = EXCLUDED.total_amount,
			issued_at = NOW()
		RETURNING id, invoice_number, issued_at`

	return r.db.QueryRowContext(ctx, query,
		inv.InvoiceNumber,
		inv.BookingID,
		inv.RoomTotal,
		inv.ServicesTotal,
		inv.TaxAmount,
		inv.DiscountAmount,
		inv.TotalAmount,
	).Scan(&inv.ID, &inv.InvoiceNumber, &inv.IssuedAt)
}

func (r *InvoiceRepository) GetByBookingID(ctx context.Context, bookingID int64) (*models.Invoice, error) {
	inv := &models.Invoice{}
	query := `
		SELECT id, invoice_number, booking_id, room_total, services_total, tax_amount,
		       discount_amount, total_amount, issued_at
		FROM invoices
		WHERE booking_id = $1`

	err := r.db.QueryRowContext(ctx, query, bookingID).Scan(
		&inv.ID,
		&inv.InvoiceNumber,
		&inv.BookingID,
		&inv.RoomTotal,
		&inv.ServicesTotal,
		&inv.TaxAmount,
		&inv.DiscountAmount,
		&inv.TotalAmount,
		&inv.IssuedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return inv, err
}
