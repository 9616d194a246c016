// Package metrics implements jobquery.Observer on Prometheus collectors and
// exposes them over HTTP.
//
// Collectors live in a private registry so several engines (and tests) can
// coexist in one process.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "jobquery"

// Observer records criteria outcomes and code-list loads.
type Observer struct {
	reg *prometheus.Registry

	criteria     *prometheus.CounterVec   // jobquery_criteria_total
	loads        *prometheus.CounterVec   // jobquery_codelist_loads_total
	loadDuration *prometheus.HistogramVec // jobquery_codelist_load_duration_seconds
}

// New registers the collectors on a fresh registry.
func New() (*Observer, error) {
	reg := prometheus.NewRegistry()

	criteria := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "criteria_total",
			Help:      "Search criteria processed, partitioned by field and outcome (accepted or an issue code).",
		},
		[]string{"field", "outcome"},
	)
	loads := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "codelist_loads_total",
			Help:      "Code-list source loads, partitioned by source and status.",
		},
		[]string{"source", "status"},
	)
	loadDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "codelist_load_duration_seconds",
			Help:      "Duration of code-list source loads in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	for _, c := range []prometheus.Collector{criteria, loads, loadDuration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register collector: %w", err)
		}
	}
	return &Observer{
		reg:          reg,
		criteria:     criteria,
		loads:        loads,
		loadDuration: loadDuration,
	}, nil
}

// CriterionObserved implements jobquery.Observer. Unknown field keys are
// folded into one label value to keep cardinality bounded.
func (o *Observer) CriterionObserved(field, code string) {
	outcome := code
	if outcome == "" {
		outcome = "accepted"
	}
	if code == "unknown_field" {
		field = "_unknown"
	}
	o.criteria.WithLabelValues(field, outcome).Inc()
}

// CodeListLoaded implements jobquery.Observer.
func (o *Observer) CodeListLoaded(source string, took time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	o.loads.WithLabelValues(source, status).Inc()
	o.loadDuration.WithLabelValues(source).Observe(took.Seconds())
}

// Registry returns the registry holding the collectors.
func (o *Observer) Registry() *prometheus.Registry { return o.reg }

// Handler serves the collectors in the Prometheus exposition format.
func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.reg, promhttp.HandlerOpts{})
}
