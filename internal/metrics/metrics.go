package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hotelier"

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_created_total",
		Help:      "Bookings successfully created.",
	})

	BookingConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_conflicts_total",
		Help:      "Booking attempts rejected because the window was taken.",
	})

	BookingTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_transitions_total",
		Help:      "Applied booking status transitions.",
	}, []string{"from", "to"})

	PointsEarned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loyalty_points_earned_total",
		Help:      "Loyalty points credited.",
	})

	PointsEarnFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loyalty_earn_failures_total",
		Help:      "Completed stays whose points credit failed and awaits a retry.",
	})

	PointsRedeemed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loyalty_points_redeemed_total",
		Help:      "Loyalty points debited.",
	})

	PromoRedemptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "promo_redemptions_total",
		Help:      "Promotional code redemptions by code.",
	}, []string{"code"})

	RatingCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rating_cache_lookups_total",
		Help:      "Room rating cache lookups by result (hit, miss, error).",
	}, []string{"result"})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Domain events handed to NATS Streaming.",
	}, []string{"subject", "result"})

	BookingsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_expired_total",
		Help:      "Pending bookings cancelled by the expiry job.",
	})
)
