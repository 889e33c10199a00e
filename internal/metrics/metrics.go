package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DonationsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zwl_donations_created_total",
		Help: "Total number of donations successfully created.",
	})

	MatchesComputedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zwl_matches_computed_total",
		Help: "Total number of NGO match computations performed.",
	})

	StatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zwl_status_transitions_total",
		Help: "Total number of donation status transitions by target status.",
	},
		[]string{"status"},
	)

	ExpiredDonationsCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zwl_expired_donations_cancelled_total",
		Help: "Total number of pending donations cancelled by the expiry sweep.",
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zwl_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)

	DonationCacheItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "zwl_donation_cache_items",
		Help: "Current number of items in the donation cache.",
	})
)
