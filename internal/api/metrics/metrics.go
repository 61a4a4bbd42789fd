// Package metrics defines and registers all custom Prometheus metrics for the
// livetracker API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "livetracker"

// ── Location metrics ──────────────────────────────────────────────────────────

// LocationUpdatesProcessedTotal counts location reports stored successfully.
// Label:
//   - party: "victim" or "responder"
var LocationUpdatesProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "location_updates_processed_total",
		Help:      "Total number of location updates successfully processed.",
	},
	[]string{"party"},
)

// LocationUpdateErrorsTotal counts location reports that failed processing.
// Label:
//   - reason: short description of the failure (e.g. "forbidden", "emergency_closed")
var LocationUpdateErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "location_update_errors_total",
		Help:      "Total number of location updates that failed processing.",
	},
	[]string{"reason"},
)

// LocationDedupTotal counts deduplication decisions.
// Label:
//   - result: "hit" (duplicate, skipped) or "miss" (new update, processed)
var LocationDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "location_dedup_total",
		Help:      "Total number of deduplication checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// LocationQueueDepth tracks the number of updates waiting in each worker channel.
var LocationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "location_queue_depth",
		Help:      "Current number of location updates pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// LocationProcessingDuration measures how long a single update takes end-to-end.
var LocationProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "location_processing_duration_seconds",
		Help:      "Duration of location processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"party"},
)

// ResponderDistanceKm observes the victim/responder great-circle distance
// whenever both positions are known after an update.
var ResponderDistanceKm = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "responder_distance_km",
		Help:      "Haversine distance between victim and responder after each update.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 25, 50},
	},
)

// ── Emergency metrics ─────────────────────────────────────────────────────────

// EmergenciesReportedTotal counts newly reported emergencies by type.
var EmergenciesReportedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emergencies_reported_total",
		Help:      "Total number of emergencies reported, by type.",
	},
	[]string{"type"},
)

// EmergenciesAcceptedTotal counts responder assignments.
var EmergenciesAcceptedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emergencies_accepted_total",
		Help:      "Total number of emergencies accepted by a responder.",
	},
)
