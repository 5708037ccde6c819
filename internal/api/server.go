package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"hotelier/internal/cache"
	"hotelier/internal/config"
	"hotelier/internal/database"
	"hotelier/internal/handlers"
	"hotelier/internal/logger"
	"hotelier/internal/messaging"
	"hotelier/internal/middleware"
	"hotelier/internal/repository"
	"hotelier/internal/search"
	"hotelier/internal/service"
	"hotelier/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Server представляет HTTP сервер API
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	redis    *redis.Client
	services *service.Services
}

// NewServer connects every backend and builds the router. Redis and
// Elasticsearch are optional; without Redis sessions live in process memory.
func NewServer(cfg *config.Config) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	log := logger.Get()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	s := &Server{config: cfg, db: db, nats: natsClient}
	deps := service.Deps{Publisher: natsClient}

	var sessionStore session.Store = session.NewMemoryStore()
	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, sessions kept in memory and rating cache disabled", "error", err)
		} else {
			s.redis = rdb
			sessionStore = session.NewRedisStore(rdb)
			deps.RatingCache = cache.NewRatingCache(rdb, cfg.Redis.RatingTTL)
		}
	}
	sessions := session.NewManager(sessionStore, cfg.Session.Secret, cfg.Session.TTL)
	deps.Sessions = sessions

	if cfg.Elasticsearch.Enabled {
		index, err := search.NewRoomIndex(cfg.Elasticsearch)
		if err != nil {
			log.Warn("Elasticsearch unavailable, room search falls back to the database", "error", err)
		} else {
			deps.RoomIndex = index
		}
	}

	s.services = service.NewServices(service.StoresFrom(repository.NewRepositories(db)), deps, service.Options{
		PointsPerCurrencyUnit: cfg.Loyalty.PointsPerCurrencyUnit,
		TaxPercent:            cfg.Billing.TaxPercent,
	})

	s.router = NewRouter(cfg, handlers.NewHandlers(s.services), middleware.Auth(sessions), s.healthCheck)
	return s, nil
}

// NewRouter wires the middleware chain and every route.
func NewRouter(cfg *config.Config, h *handlers.Handlers, auth gin.HandlerFunc, health gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS(cfg.CORSOrigins))

	router.GET("/health", health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst).Middleware())
	}
	api.Use(middleware.Timeout(cfg.RequestTimeout))
	h.Routes(api, auth)

	return router
}

// healthCheck обрабатывает health check запросы
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	db := s.db.HealthCheck(ctx)
	status := http.StatusOK
	if db.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   db.Status,
		"service":  "hotelier-api",
		"database": db,
		"events":   s.nats.Enabled(),
	})
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup закрывает соединения
func (s *Server) Cleanup() error {
	log := logger.Get()
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			log.Error("Error closing NATS connection", "error", err)
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Error("Error closing Redis connection", "error", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Error("Error closing database connection", "error", err)
			return err
		}
	}
	return nil
}
