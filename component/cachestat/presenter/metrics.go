package presenter

import (
	"context"
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cache_monitoring"

type Metrics struct {
	sample      *prometheus.GaugeVec
	used        prometheus.Gauge
	configured  prometheus.Gauge
	denominator prometheus.Gauge
	usageRatio  prometheus.Gauge
}

// NewMetrics registers the cache gauges on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		sample: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sample_bytes",
				Help:      "Bytes held in the storage engine cache by one object or index",
			},
			[]string{"label"},
		),
		used: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "used_bytes",
			Help:      "Sum of the cache bytes held by every sampled object and index",
		}),
		configured: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "configured_bytes",
			Help:      "Maximum cache size configured on the storage engine",
		}),
		denominator: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "denominator_bytes",
			Help:      "Bytes the reported shares are relative to",
		}),
		usageRatio: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "usage_ratio",
			Help:      "Used cache bytes divided by the denominator, NaN when the denominator is zero",
		}),
	}
}

func (m *Metrics) Present(_ context.Context, report CycleReport) error {
	summary := report.Summary

	// dropped objects must not keep their last value
	m.sample.Reset()
	for _, s := range summary.Samples {
		m.sample.WithLabelValues(s.Label).Add(float64(s.Value))
	}
	m.used.Set(float64(summary.UsedSum))
	m.configured.Set(float64(summary.TotalConfigured))
	m.denominator.Set(float64(summary.Denominator))
	if percent, ok := UsagePercent(summary); ok {
		m.usageRatio.Set(percent / 100)
	} else {
		m.usageRatio.Set(math.NaN())
	}
	return nil
}
