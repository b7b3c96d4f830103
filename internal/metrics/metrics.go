// Package metrics exposes Prometheus instrumentation for report computation
// and cache behaviour.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	reportComputations *prometheus.CounterVec
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
)

// Register installs the collectors on the default registry. Safe to call more
// than once; an already-registered collector is reused.
func Register() {
	registerOnce.Do(func() {
		reportComputations = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reporting",
			Name:      "report_computations_total",
			Help:      "Aggregation engine invocations per report",
		}, []string{"report"})

		cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reporting",
			Name:      "cache_hits_total",
			Help:      "Report cache hits",
		})

		cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reporting",
			Name:      "cache_misses_total",
			Help:      "Report cache misses",
		})

		for _, c := range []prometheus.Collector{reportComputations, cacheHits, cacheMisses} {
			if err := prometheus.Register(c); err != nil {
				if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
					switch v := are.ExistingCollector.(type) {
					case *prometheus.CounterVec:
						reportComputations = v
					case prometheus.Counter:
						if c == cacheHits {
							cacheHits = v
						} else {
							cacheMisses = v
						}
					}
				}
			}
		}
	})
}

// ReportComputed records one aggregation engine run for the named report.
func ReportComputed(report string) {
	if reportComputations != nil {
		reportComputations.WithLabelValues(report).Inc()
	}
}

// CacheHit records a report served from cache.
func CacheHit() {
	if cacheHits != nil {
		cacheHits.Inc()
	}
}

// CacheMiss records a cache miss that triggered recomputation.
func CacheMiss() {
	if cacheMisses != nil {
		cacheMisses.Inc()
	}
}

// Handler returns the scrape endpoint for the transport collaborator to mount.
func Handler() http.Handler {
	return promhttp.Handler()
}
