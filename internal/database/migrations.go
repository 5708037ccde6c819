package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createExtensions,
		createUsersTable,
		createRoomsTable,
		createBookingsTable,
		createServicesTable,
		createBookingServicesTable,
		createReviewsTable,
		createLoyaltyTables,
		createPromotionTables,
		createInvoicesTable,
		createIndexes,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

// btree_gist lets the bookings exclusion constraint combine = and && operators.
const createExtensions = `CREATE EXTENSION IF NOT EXISTS btree_gist;`

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(100) NOT NULL,
    full_name VARCHAR(200) NOT NULL,
    phone VARCHAR(32),
    role VARCHAR(20) NOT NULL DEFAULT 'customer',
    is_vip BOOLEAN NOT NULL DEFAULT FALSE,
    preferences TEXT[] NOT NULL DEFAULT '{}',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (role IN ('customer', 'admin'))
);`

const createRoomsTable = `
CREATE TABLE IF NOT EXISTS rooms (
    id SERIAL PRIMARY KEY,
    number VARCHAR(20) UNIQUE NOT NULL,
    type VARCHAR(50) NOT NULL,
    price BIGINT NOT NULL CHECK (price > 0),
    capacity INTEGER NOT NULL CHECK (capacity > 0),
    status VARCHAR(20) NOT NULL DEFAULT 'available',
    description TEXT,
    amenities TEXT[] NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (status IN ('available', 'booked', 'maintenance'))
);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id),
    room_id INTEGER NOT NULL REFERENCES rooms(id),
    check_in TIMESTAMPTZ NOT NULL,
    check_out TIMESTAMPTZ NOT NULL,
    guests INTEGER NOT NULL CHECK (guests > 0),
    special_requests TEXT,
    payment_method VARCHAR(20) NOT NULL,
    payment_status VARCHAR(20) NOT NULL DEFAULT 'pending',
    room_total BIGINT NOT NULL DEFAULT 0,
    services_total BIGINT NOT NULL DEFAULT 0,
    total_price BIGINT NOT NULL DEFAULT 0,
    discount_amount BIGINT NOT NULL DEFAULT 0,
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (check_in < check_out),
    CHECK (status IN ('pending', 'deposit_paid', 'confirmed', 'completed', 'cancelled')),
    CHECK (payment_method IN ('card', 'bank_transfer', 'cash')),
    CONSTRAINT bookings_no_overlap EXCLUDE USING gist (
        room_id WITH =,
        tstzrange(check_in, check_out, '[)') WITH &&
    ) WHERE (status <> 'cancelled')
);`

const createServicesTable = `
CREATE TABLE IF NOT EXISTS services (
    id SERIAL PRIMARY KEY,
    name VARCHAR(200) NOT NULL,
    description TEXT,
    price BIGINT NOT NULL CHECK (price >= 0),
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createBookingServicesTable = `
CREATE TABLE IF NOT EXISTS booking_services (
    id SERIAL PRIMARY KEY,
    booking_id INTEGER NOT NULL REFERENCES bookings(id),
    service_id INTEGER NOT NULL REFERENCES services(id),
    quantity INTEGER NOT NULL CHECK (quantity > 0),
    unit_price BIGINT NOT NULL,
    added_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createReviewsTable = `
CREATE TABLE IF NOT EXISTS reviews (
    id SERIAL PRIMARY KEY,
    booking_id INTEGER NOT NULL UNIQUE REFERENCES bookings(id),
    user_id INTEGER NOT NULL REFERENCES users(id),
    room_id INTEGER NOT NULL REFERENCES rooms(id),
    rating SMALLINT NOT NULL CHECK (rating BETWEEN 1 AND 5),
    title VARCHAR(200),
    comment TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createLoyaltyTables = `
CREATE TABLE IF NOT EXISTS loyalty_points (
    user_id INTEGER PRIMARY KEY REFERENCES users(id),
    current_points BIGINT NOT NULL DEFAULT 0,
    total_earned BIGINT NOT NULL DEFAULT 0,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CONSTRAINT loyalty_points_non_negative CHECK (current_points >= 0)
);
CREATE TABLE IF NOT EXISTS point_transactions (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id),
    type VARCHAR(10) NOT NULL,
    points BIGINT NOT NULL CHECK (points > 0),
    booking_id INTEGER REFERENCES bookings(id),
    reward_id VARCHAR(100),
    description TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (type IN ('earned', 'redeemed'))
);
CREATE UNIQUE INDEX IF NOT EXISTS point_transactions_earned_booking_idx
ON point_transactions (booking_id) WHERE type = 'earned';`

const createPromotionTables = `
CREATE TABLE IF NOT EXISTS promotional_codes (
    id SERIAL PRIMARY KEY,
    code VARCHAR(50) UNIQUE NOT NULL,
    description TEXT,
    discount_type VARCHAR(20) NOT NULL,
    discount_value BIGINT NOT NULL CHECK (discount_value > 0),
    max_discount BIGINT,
    min_amount BIGINT NOT NULL DEFAULT 0,
    valid_from TIMESTAMPTZ NOT NULL,
    valid_to TIMESTAMPTZ NOT NULL,
    usage_limit INTEGER NOT NULL CHECK (usage_limit > 0),
    used_count INTEGER NOT NULL DEFAULT 0,
    per_user_limit INTEGER NOT NULL DEFAULT 0,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (discount_type IN ('percentage', 'fixed')),
    CONSTRAINT promotional_codes_usage_cap CHECK (used_count <= usage_limit),
    CHECK (valid_from <= valid_to)
);
CREATE TABLE IF NOT EXISTS promotional_code_usages (
    id SERIAL PRIMARY KEY,
    promo_code_id INTEGER NOT NULL REFERENCES promotional_codes(id),
    user_id INTEGER NOT NULL REFERENCES users(id),
    booking_id INTEGER NOT NULL REFERENCES bookings(id),
    discount_amount BIGINT NOT NULL,
    used_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    UNIQUE (promo_code_id, booking_id)
);`

const createInvoicesTable = `
CREATE TABLE IF NOT EXISTS invoices (
    id SERIAL PRIMARY KEY,
    invoice_number VARCHAR(40) UNIQUE NOT NULL,
    booking_id INTEGER NOT NULL UNIQUE REFERENCES bookings(id),
    room_total BIGINT NOT NULL,
    services_total BIGINT NOT NULL,
    tax_amount BIGINT NOT NULL,
    discount_amount BIGINT NOT NULL,
    total_amount BIGINT NOT NULL,
    issued_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createIndexes = `
CREATE INDEX IF NOT EXISTS bookings_room_window_idx ON bookings (room_id, check_in, check_out);
CREATE INDEX IF NOT EXISTS bookings_user_idx ON bookings (user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS bookings_pending_created_idx ON bookings (created_at) WHERE status = 'pending';
CREATE INDEX IF NOT EXISTS reviews_room_idx ON reviews (room_id);
CREATE INDEX IF NOT EXISTS point_transactions_user_idx ON point_transactions (user_id, created_at);`
