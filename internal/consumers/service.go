package consumers

import (
	"context"
	"fmt"

	"hotelier/internal/cache"
	"hotelier/internal/config"
	"hotelier/internal/database"
	"hotelier/internal/logger"
	"hotelier/internal/messaging"
	"hotelier/internal/models"
	"hotelier/internal/repository"
	"hotelier/internal/search"
	"hotelier/internal/service"

	"github.com/nats-io/stan.go"
	"github.com/redis/go-redis/v9"
)

const queueGroup = "hotelier-consumers"

type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	redis    *redis.Client
	services *service.Services
	handlers *Handlers

	subscriptions []stan.Subscription
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	log := logger.Get()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	cs := &ConsumerService{db: db, nats: natsClient}
	repos := repository.NewRepositories(db)
	deps := service.Deps{Publisher: natsClient}
	h := &Handlers{rooms: repos.Rooms}

	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, rating invalidation disabled", "error", err)
		} else {
			cs.redis = rdb
			ratings := cache.NewRatingCache(rdb, cfg.Redis.RatingTTL)
			h.ratings = ratings
			deps.RatingCache = ratings
		}
	}

	if cfg.Elasticsearch.Enabled {
		index, err := search.NewRoomIndex(cfg.Elasticsearch)
		if err != nil {
			log.Warn("Elasticsearch unavailable, room indexing disabled", "error", err)
		} else {
			h.index = index
			deps.RoomIndex = index
		}
	}

	cs.handlers = h
	cs.services = service.NewServices(service.StoresFrom(repos), deps, service.Options{
		PointsPerCurrencyUnit: cfg.Loyalty.PointsPerCurrencyUnit,
		TaxPercent:            cfg.Billing.TaxPercent,
	})
	return cs, nil
}

// Bookings is used by the scheduled jobs.
func (cs *ConsumerService) Bookings() *service.BookingService {
	return cs.services.Bookings
}

func (cs *ConsumerService) DB() *database.DB {
	return cs.db
}

// Start subscribes the handlers whose backend is configured.
func (cs *ConsumerService) Start() error {
	log := logger.Get()
	if !cs.nats.Enabled() {
		log.Warn("NATS disabled, no event consumers started")
		return nil
	}

	if cs.handlers.ratings != nil {
		if err := cs.subscribe(models.EventReviewSubmitted, cs.handlers.HandleReviewSubmitted); err != nil {
			return err
		}
	}
	if cs.handlers.index != nil {
		if err := cs.subscribe(models.EventRoomUpdated, cs.handlers.HandleRoomUpdated); err != nil {
			return err
		}
	}

	log.Info("Event consumers started", "subscriptions", len(cs.subscriptions))
	return nil
}

func (cs *ConsumerService) subscribe(subject string, handler stan.MsgHandler) error {
	sub, err := cs.nats.SubscribeQueue(subject, queueGroup, handler)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	cs.subscriptions = append(cs.subscriptions, sub)
	return nil
}

func (cs *ConsumerService) Shutdown(_ context.Context) error {
	log := logger.Get()
	log.Info("Shutting down consumer service...")

	for _, sub := range cs.subscriptions {
		if err := sub.Close(); err != nil {
			log.Error("Error closing subscription", "error", err)
		}
	}
	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			log.Error("Error closing NATS connection", "error", err)
		}
	}
	if cs.redis != nil {
		if err := cs.redis.Close(); err != nil {
			log.Error("Error closing Redis connection", "error", err)
		}
	}
	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			log.Error("Error closing database connection", "error", err)
			return err
		}
	}
	return nil
}
