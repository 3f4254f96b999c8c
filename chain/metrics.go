package chain

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type chainMetrics struct {
	txTotal    *prometheus.CounterVec
	txDuration prometheus.Histogram
	callDepth  prometheus.Histogram
	height     prometheus.Gauge
}

func newChainMetrics(reg prometheus.Registerer) *chainMetrics {
	factory := promauto.With(reg)
	return &chainMetrics{
		txTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gallery_tx_total",
			Help: "executed transactions by method and status",
		}, []string{"method", "status"}),
		txDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gallery_tx_duration_seconds",
			Help:    "time spent executing a transaction",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		callDepth: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gallery_tx_call_depth",
			Help:    "deepest contract frame per transaction",
			Buckets: prometheus.LinearBuckets(1, 1, MaxCallDepth),
		}),
		height: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gallery_chain_height",
			Help: "last committed height",
		}),
	}
}
