package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hotelier/cmd/consumers/jobs"
	"hotelier/internal/config"
	"hotelier/internal/consumers"
	"hotelier/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()
	log.Info("Starting consumers service...")

	// Override NATS client ID for consumers
	cfg.NATS.ClientID = "hotelier-consumers"

	consumerService, err := consumers.NewConsumerService(cfg)
	if err != nil {
		logger.Fatal("Failed to create consumer service", "error", err)
	}

	if err := consumerService.Start(); err != nil {
		logger.Fatal("Failed to start consumers", "error", err)
	}

	scheduler := jobs.NewCron()
	expiry := jobs.NewBookingExpirationJob(consumerService.Bookings(), cfg.Booking.PendingHold)
	if err := jobs.Schedule(scheduler, expiry, cfg.Booking.ExpirySchedule, consumerService.DB()); err != nil {
		logger.Fatal("Failed to schedule jobs", "error", err)
	}
	scheduler.Start()

	log.Info("Consumers service started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down consumers service...")

	// wait for a running job before closing the pool it uses
	<-scheduler.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := consumerService.Shutdown(ctx); err != nil {
		log.Error("Error during shutdown", "error", err)
	}

	log.Info("Consumers service stopped")
}
