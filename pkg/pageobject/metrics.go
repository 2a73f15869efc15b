package pageobject

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records query and wrapping activity. A nil *Metrics records nothing.
type Metrics struct {
	queries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	matches  *prometheus.CounterVec
	wrapped  prometheus.Counter
}

// NewMetrics creates the pageobject collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pageobject",
			Name:      "queries_total",
			Help:      "Selector queries issued against browsing contexts.",
		}, []string{"cardinality", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pageobject",
			Name:      "query_duration_seconds",
			Help:      "Latency of selector queries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"cardinality"}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pageobject",
			Name:      "matched_elements_total",
			Help:      "Elements returned by selector queries.",
		}, []string{"cardinality"}),
		wrapped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pageobject",
			Name:      "wrapped_objects_total",
			Help:      "Composite instances constructed from raw handles.",
		}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.queries, m.duration, m.matches, m.wrapped} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) observeQuery(c Cardinality, start time.Time, matched int, err error) {
	if m == nil {
		return
	}
	outcome := "hit"
	switch {
	case err != nil:
		outcome = "error"
	case matched == 0:
		outcome = "miss"
	}
	m.queries.WithLabelValues(c.String(), outcome).Inc()
	m.duration.WithLabelValues(c.String()).Observe(time.Since(start).Seconds())
	m.matches.WithLabelValues(c.String()).Add(float64(matched))
}

func (m *Metrics) observeWrapped(n int) {
	if m == nil || n == 0 {
		return
	}
	m.wrapped.Add(float64(n))
}
