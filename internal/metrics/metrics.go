// Package metrics provides Prometheus metrics for the queue bot.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "queuebot"
	subsystem = "review_queue"
)

// Custom registry to avoid the default Go collectors.
var registry = prometheus.NewRegistry()

var (
	submissionsCreated prometheus.Counter
	claimsServed       *prometheus.CounterVec
	giftPromotions     prometheus.Counter
	skipPurchases      prometheus.Counter
	coinsAwarded       prometheus.Counter
	queueDepth         *prometheus.GaugeVec
)

func init() {
	auto := promauto.With(registry)

	submissionsCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "submissions_created_total",
		Help:      "Total number of submissions created",
	})

	claimsServed = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "claims_served_total",
			Help:      "Total number of submissions served, by source tier",
		},
		[]string{"tier"},
	)

	giftPromotions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "gift_promotions_total",
		Help:      "Total number of gift threshold promotions",
	})

	skipPurchases = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "skip_purchases_total",
		Help:      "Total number of purchased skips",
	})

	coinsAwarded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "coins_awarded_total",
		Help:      "Total Luxury Coins awarded from gifts and watch time",
	})

	queueDepth = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queue_depth",
			Help:      "Current number of submissions per tier",
		},
		[]string{"tier"},
	)
}

// RecordSubmissionCreated increments the submissions created counter.
func RecordSubmissionCreated() {
	submissionsCreated.Inc()
}

// RecordClaimServed increments the served counter for the source tier.
func RecordClaimServed(tier string) {
	claimsServed.WithLabelValues(tier).Inc()
}

// RecordGiftPromotion increments the gift promotion counter.
func RecordGiftPromotion() {
	giftPromotions.Inc()
}

// RecordSkipPurchase increments the skip purchase counter.
func RecordSkipPurchase() {
	skipPurchases.Inc()
}

// RecordCoinsAwarded adds to the coins awarded counter.
func RecordCoinsAwarded(coins int64) {
	coinsAwarded.Add(float64(coins))
}

// UpdateQueueDepth sets the current depth of a tier's queue.
func UpdateQueueDepth(tier string, depth int) {
	queueDepth.WithLabelValues(tier).Set(float64(depth))
}

// Handler returns an HTTP handler exposing the metrics registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
