package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tz_region"

// Metrics holds the Prometheus counters, histograms, and gauges for region lookups.
type Metrics struct {
	LookupsTotal   *prometheus.CounterVec   // labels: mode={list,resolve,error}, outcome={ok,invalid,not_found,error}
	Resolutions    *prometheus.CounterVec   // labels: classification
	LookupDuration *prometheus.HistogramVec // labels: mode

	// Store metrics.
	StoreQueryDuration *prometheus.HistogramVec // labels: query={nearest_shape,shape_names,list_bands}
	RegionsLoaded      *prometheus.GaugeVec     // labels: tier={shape,band}

	// Event publishing.
	EventsPublished *prometheus.CounterVec // labels: outcome={success,error}
}

func newMetrics() *Metrics {
	return &Metrics{
		LookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Timezone requests by mode and outcome.",
		}, []string{"mode", "outcome"}),
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Resolved points by classification.",
		}, []string{"classification"}),
		LookupDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Duration of a timezone request by mode.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"mode"}),
		StoreQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_query_duration_seconds",
			Help:      "Duration of region store queries.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"query"}),
		RegionsLoaded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "regions_loaded",
			Help:      "Number of regions available to the resolver by tier.",
		}, []string{"tier"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Resolution events written to Kafka by outcome.",
		}, []string{"outcome"}),
	}
}

// NewMetrics creates and registers all lookup metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.LookupsTotal,
		m.Resolutions,
		m.LookupDuration,
		m.StoreQueryDuration,
		m.RegionsLoaded,
		m.EventsPublished,
	)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
