package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "travelgo_bookings_created_total",
		Help: "Bookings created",
	})

	reviewsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "travelgo_reviews_created_total",
		Help: "Reviews created",
	})

	idempotentReplays = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelgo_idempotent_replays_total",
		Help: "Create requests answered from an earlier request with the same idempotency key",
	}, []string{"resource"})

	dashboardCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelgo_dashboard_cache_requests_total",
		Help: "Dashboard summary cache lookups by result",
	}, []string{"result"})

	degradedReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelgo_degraded_reads_total",
		Help: "Auxiliary reads that failed and were rendered as empty",
	}, []string{"part"})
)
