package billing

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

var webhookEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "majaz",
	Subsystem: "stripe",
	Name:      "webhook_events_total",
	Help:      "Counter of Stripe webhook events by type and outcome",
}, []string{"type", "outcome"})

func RegisterMetrics(reg prometheus.Registerer) error {
	err := reg.Register(webhookEventsTotal)
	if err != nil {
		return fmt.Errorf("failed to register metric: %w", err)
	}
	return nil
}

func reportWebhookEvent(eventType string, outcome Outcome) {
	webhookEventsTotal.WithLabelValues(eventType, string(outcome)).Inc()
}
