package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the tracker's Prometheus instruments on a private
// registry.
type Collector struct {
	reg *prometheus.Registry

	JourneysStarted   prometheus.Counter
	JourneysCompleted prometheus.Counter
	JourneysCancelled prometheus.Counter
	StopMoves         *prometheus.CounterVec // direction label: next|previous

	BoardEvents        *prometheus.CounterVec // kind label: Enter|Exit
	CapacityRejections prometheus.Counter

	TrackEvents prometheus.Counter

	ProximityQueries prometheus.Counter
	MatrixFallbacks  prometheus.Counter
	MatrixDuration   prometheus.Histogram
}

// NewCollector builds and registers all instruments.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		JourneysStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bustracker_journeys_started_total",
			Help: "Journeys started.",
		}),
		JourneysCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bustracker_journeys_completed_total",
			Help: "Journeys completed.",
		}),
		JourneysCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bustracker_journeys_cancelled_total",
			Help: "Journeys cancelled.",
		}),
		StopMoves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bustracker_stop_moves_total",
			Help: "Successful stop pointer moves.",
		}, []string{"direction"}),
		BoardEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bustracker_board_events_total",
			Help: "Recorded board events.",
		}, []string{"kind"}),
		CapacityRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bustracker_capacity_rejections_total",
			Help: "Board events rejected by the capacity ledger.",
		}),
		TrackEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bustracker_track_events_total",
			Help: "Recorded location events.",
		}),
		ProximityQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bustracker_proximity_queries_total",
			Help: "Approaching-bus queries served.",
		}),
		MatrixFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bustracker_matrix_fallbacks_total",
			Help: "Distance-matrix calls that fell back to haversine.",
		}),
		MatrixDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bustracker_matrix_call_seconds",
			Help:    "Distance-matrix call duration.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.JourneysStarted, c.JourneysCompleted, c.JourneysCancelled,
		c.StopMoves, c.BoardEvents, c.CapacityRejections, c.TrackEvents,
		c.ProximityQueries, c.MatrixFallbacks, c.MatrixDuration,
	)
	return c
}

// Handler serves the registry in Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}
