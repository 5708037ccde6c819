package jobs

import (
	"context"
	"fmt"
	"time"

	"hotelier/internal/logger"

	"github.com/robfig/cron/v3"
)

const poolCheckSchedule = "@every 1m"

// BookingExpirer cancels pending bookings that outlived their hold.
type BookingExpirer interface {
	ExpirePending(ctx context.Context, hold time.Duration) (int, error)
}

// PoolValidator is satisfied by *database.DB.
type PoolValidator interface {
	ValidateConnectionPool()
}

// BookingExpirationJob releases rooms held by unpaid pending bookings
type BookingExpirationJob struct {
	expirer BookingExpirer
	hold    time.Duration
	timeout time.Duration
}

func NewBookingExpirationJob(expirer BookingExpirer, hold time.Duration) *BookingExpirationJob {
	return &BookingExpirationJob{expirer: expirer, hold: hold, timeout: 30 * time.Second}
}

// Run implements cron.Job.
func (j *BookingExpirationJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	log := logger.WithFields("job", "booking_expiration", "hold", j.hold)
	n, err := j.expirer.ExpirePending(ctx, j.hold)
	if err != nil {
		log.Error("Failed to expire pending bookings", "error", err, "expired", n)
		return
	}
	if n > 0 {
		log.Info("Expired pending bookings", "count", n)
		return
	}
	log.Debug("No expired bookings found")
}

type poolCheckJob struct{ db PoolValidator }

func (j poolCheckJob) Run() { j.db.ValidateConnectionPool() }

// Schedule registers the jobs on c; the caller starts and stops it.
func Schedule(c *cron.Cron, expiry *BookingExpirationJob, expirySpec string, db PoolValidator) error {
	if _, err := c.AddJob(expirySpec, expiry); err != nil {
		return fmt.Errorf("invalid booking expiry schedule %q: %w", expirySpec, err)
	}
	if db != nil {
		if _, err := c.AddJob(poolCheckSchedule, poolCheckJob{db: db}); err != nil {
			return fmt.Errorf("failed to schedule pool check: %w", err)
		}
	}
	logger.Get().Info("Cron jobs scheduled", "booking_expiry", expirySpec, "entries", len(c.Entries()))
	return nil
}

// NewCron builds a scheduler that never overlaps runs of the same job.
func NewCron() *cron.Cron {
	return cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))
}
