package event

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type eventMetrics struct {
	eventsTotal    *prometheus.CounterVec
	subscribers    *prometheus.GaugeVec
	deliveryErrors *prometheus.CounterVec
}

func newEventMetrics(reg prometheus.Registerer) *eventMetrics {
	factory := promauto.With(reg)
	return &eventMetrics{
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gallery_events_total",
			Help: "events published on the bus",
		}, []string{"type"}),
		subscribers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gallery_event_subscribers",
			Help: "current subscribers per event type",
		}, []string{"type"}),
		deliveryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gallery_event_delivery_errors_total",
			Help: "failed deliveries, the subscriber is dropped afterwards",
		}, []string{"type"}),
	}
}
