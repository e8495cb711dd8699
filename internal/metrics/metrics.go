package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Label values for aggregation outcomes.
const (
	AggregationStatusSuccess = "success"
	AggregationStatusFailed  = "failed"
)

// Label values for the upstream resource that failed.
const (
	ResourceProfile  = "profile"
	ResourceActivity = "activity"
)

// Metrics holds the counters of the presence feed.
type Metrics struct {
	aggregations        *prometheus.CounterVec
	aggregationDuration prometheus.Histogram
	collapsedRequests   prometheus.Counter
	upstreamFailures    *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		aggregations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "teampresence",
			Name:      "aggregations_total",
			Help:      "Total number of upstream fan-outs, by outcome.",
		}, []string{"status"}),
		aggregationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "teampresence",
			Name:      "aggregation_duration_seconds",
			Help:      "Time taken by one upstream fan-out.",
			Buckets:   prometheus.DefBuckets,
		}),
		collapsedRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "teampresence",
			Name:      "collapsed_requests_total",
			Help:      "Requests served by attaching to a fan-out started by another request.",
		}),
		upstreamFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "teampresence",
			Name:      "upstream_failures_total",
			Help:      "Failed per-user upstream calls, by resource.",
		}, []string{"resource"}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{
			m.aggregations,
			m.aggregationDuration,
			m.collapsedRequests,
			m.upstreamFailures,
		} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}

	return m, nil
}

// RecordAggregation records one finished fan-out.
func (m *Metrics) RecordAggregation(duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := AggregationStatusSuccess
	if err != nil {
		status = AggregationStatusFailed
	}
	m.aggregations.WithLabelValues(status).Inc()
	m.aggregationDuration.Observe(duration.Seconds())
}

// RecordCollapsed counts a request that shared another request's fan-out.
func (m *Metrics) RecordCollapsed() {
	if m == nil {
		return
	}
	m.collapsedRequests.Inc()
}

// RecordUpstreamFailure counts a failed per-user call.
func (m *Metrics) RecordUpstreamFailure(resource string) {
	if m == nil {
		return
	}
	m.upstreamFailures.WithLabelValues(resource).Inc()
}
