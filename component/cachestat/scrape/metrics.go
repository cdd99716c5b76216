package scrape

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultSuccess         = "success"
	resultReconnectNeeded = "reconnect_needed"
	resultError           = "error"
)

var (
	cycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cache_monitoring",
		Name:      "cycle_duration_seconds",
		Help:      "Duration of a statistics cycle, from the first listing to the presented summary",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14),
	})
	cyclesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cache_monitoring",
		Name:      "cycles_total",
		Help:      "Number of finished statistics cycles by result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(cycleDuration, cyclesTotal)
}
