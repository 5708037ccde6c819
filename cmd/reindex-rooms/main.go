package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"hotelier/internal/config"
	"hotelier/internal/database"
	"hotelier/internal/logger"
	"hotelier/internal/models"
	"hotelier/internal/repository"
	"hotelier/internal/search"
)

type roomLister interface {
	List(ctx context.Context, filter models.RoomFilter) ([]models.Room, error)
}

type roomIndexer interface {
	IndexRooms(ctx context.Context, rooms []models.Room) error
}

func main() {
	var batchSize int
	var timeout time.Duration
	flag.IntVar(&batchSize, "batch-size", 500, "Rooms per bulk request")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Overall deadline")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	if !cfg.Elasticsearch.Enabled {
		logger.Fatal("Elasticsearch is disabled, nothing to reindex")
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	index, err := search.NewRoomIndex(cfg.Elasticsearch)
	if err != nil {
		logger.Fatal("Failed to connect to Elasticsearch", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	n, err := reindex(ctx, repository.NewRoomRepository(db), index, batchSize)
	if err != nil {
		logger.Fatal("Room reindex failed", "error", err, "indexed", n)
	}
	log.Info("Room reindex completed", "rooms", n, "duration", time.Since(start))
}

// reindex pages through every room and bulk indexes each page.
func reindex(ctx context.Context, rooms roomLister, index roomIndexer, batchSize int) (int, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	total := 0
	for page := 1; ; page++ {
		batch, err := rooms.List(ctx, models.RoomFilter{Page: page, PageSize: batchSize})
		if err != nil {
			return total, fmt.Errorf("failed to list rooms page %d: %w", page, err)
		}
		if len(batch) == 0 {
			return total, nil
		}
		if err := index.IndexRooms(ctx, batch); err != nil {
			return total, fmt.Errorf("failed to index rooms page %d: %w", page, err)
		}
		total += len(batch)
		logger.Get().Info("Indexed rooms batch", "page", page, "count", len(batch), "total", total)
		if len(batch) < batchSize {
			return total, nil
		}
	}
}
