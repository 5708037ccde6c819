package service

import (
	"context"
	"time"

	"hotelier/internal/logger"
	"hotelier/internal/models"
	"hotelier/internal/repository"
)

// Publisher hands domain events to the message bus.
type Publisher interface {
	Publish(subject string, data interface{}) error
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type RoomStore interface {
	Create(ctx context.Context, room *models.Room) error
	GetByID(ctx context.Context, id int64) (*models.Room, error)
	List(ctx context.Context, filter models.RoomFilter) ([]models.Room, error)
	SetMaintenance(ctx context.Context, id int64, on bool) (*models.Room, error)
	CountByStatus(ctx context.Context) (map[models.RoomStatus]int, error)
}

type BookingStore interface {
	CreateIfAvailable(ctx context.Context, booking *models.Booking, lines []models.BookingService) error
	HasOverlap(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (bool, error)
	GetByID(ctx context.Context, id int64) (*models.Booking, error)
	GetByUserID(ctx context.Context, userID int64) ([]models.Booking, error)
	ListExpiredPending(ctx context.Context, before time.Time) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, id int64, from, to models.BookingStatus) (*models.Booking, error)
	AddService(ctx context.Context, line *models.BookingService) (*models.Booking, error)
	CountByStatus(ctx context.Context) (map[models.BookingStatus]int, error)
	CurrentGuests(ctx context.Context, now time.Time) (int, error)
}

type ServiceStore interface {
	Create(ctx context.Context, service *models.Service) error
	GetByID(ctx context.Context, id int64) (*models.Service, error)
	List(ctx context.Context, activeOnly bool) ([]models.Service, error)
}

type ReviewStore interface {
	Create(ctx context.Context, review *models.Review) error
	GetByBookingID(ctx context.Context, bookingID int64) (*models.Review, error)
	ListByRoom(ctx context.Context, roomID int64) ([]models.Review, error)
	RoomRating(ctx context.Context, roomID int64) (models.RoomRating, error)
}

type LoyaltyStore interface {
	Earn(ctx context.Context, pt *models.PointTransaction) (models.LoyaltyAccount, bool, error)
	Redeem(ctx context.Context, pt *models.PointTransaction) (models.LoyaltyAccount, error)
	GetAccount(ctx context.Context, userID int64) (models.LoyaltyAccount, error)
	Transactions(ctx context.Context, userID int64) ([]models.PointTransaction, error)
}

type PromotionStore interface {
	Create(ctx context.Context, promo *models.PromoCode) error
	GetByCode(ctx context.Context, code string) (*models.PromoCode, error)
	Redeem(ctx context.Context, usage *models.PromoCodeUsage) error
}

type InvoiceStore interface {
	Upsert(ctx context.Context, inv *models.Invoice) error
	GetByBookingID(ctx context.Context, bookingID int64) (*models.Invoice, error)
}

// RatingCache stores computed room ratings. Get returns nil on a miss.
type RatingCache interface {
	GetRating(ctx context.Context, roomID int64) (*models.RoomRating, error)
	SetRating(ctx context.Context, rating models.RoomRating) error
	InvalidateRating(ctx context.Context, roomID int64) error
}

// RoomIndex is the full-text room search backend. Search returns matching room ids
// in relevance order.
type RoomIndex interface {
	IndexRoom(ctx context.Context, room *models.Room) error
	SearchRooms(ctx context.Context, filter models.RoomFilter) ([]int64, error)
}

// SessionIssuer creates and revokes login sessions.
type SessionIssuer interface {
	Issue(ctx context.Context, user *models.User) (token string, expiresAt time.Time, err error)
	Revoke(ctx context.Context, sessionID string) error
}

type Stores struct {
	Users      UserStore
	Rooms      RoomStore
	Bookings   BookingStore
	Services   ServiceStore
	Reviews    ReviewStore
	Loyalty    LoyaltyStore
	Promotions PromotionStore
	Invoices   InvoiceStore
}

// StoresFrom adapts the SQL repositories.
func StoresFrom(repos *repository.Repositories) Stores {
	return Stores{
		Users:      repos.Users,
		Rooms:      repos.Rooms,
		Bookings:   repos.Bookings,
		Services:   repos.Services,
		Reviews:    repos.Reviews,
		Loyalty:    repos.Loyalty,
		Promotions: repos.Promotions,
		Invoices:   repos.Invoices,
	}
}

type Options struct {
	PointsPerCurrencyUnit int64
	TaxPercent            int64
	Now                   func() time.Time
}

// Deps are the optional backends. Nil RatingCache or RoomIndex disables them.
type Deps struct {
	Publisher   Publisher
	RatingCache RatingCache
	RoomIndex   RoomIndex
	Sessions    SessionIssuer
}

type Services struct {
	Users      *UserService
	Rooms      *RoomService
	AddOns     *AddOnService
	Bookings   *BookingService
	Promotions *PromotionService
	Loyalty    *LoyaltyService
	Reviews    *ReviewService
	Invoices   *InvoiceService
	Stats      *StatsService
}

func NewServices(stores Stores, deps Deps, opts Options) *Services {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if deps.Publisher == nil {
		deps.Publisher = noopPublisher{}
	}

	loyalty := NewLoyaltyService(stores.Loyalty, deps.Publisher)

	return &Services{
		Users:      NewUserService(stores.Users, deps.Sessions),
		Rooms:      NewRoomService(stores.Rooms, deps.RoomIndex, deps.Publisher),
		AddOns:     NewAddOnService(stores.Services, stores.Bookings),
		Bookings:   NewBookingService(stores.Bookings, stores.Rooms, stores.Users, stores.Services, loyalty, deps.Publisher, opts),
		Promotions: NewPromotionService(stores.Promotions, stores.Bookings, deps.Publisher, opts.Now),
		Loyalty:    loyalty,
		Reviews:    NewReviewService(stores.Reviews, stores.Bookings, stores.Rooms, deps.RatingCache, deps.Publisher),
		Invoices:   NewInvoiceService(stores.Invoices, stores.Bookings, opts.TaxPercent),
		Stats:      NewStatsService(stores.Rooms, stores.Bookings, opts.Now),
	}
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, interface{}) error { return nil }

// publish logs and swallows publication failures.
func publish(ctx context.Context, p Publisher, subject string, event interface{}, attrs ...any) {
	if err := p.Publish(subject, event); err != nil {
		args := append([]any{"error", err, "event_type", subject}, attrs...)
		logger.WithContext(ctx).Error("Failed to publish event", args...)
	}
}
