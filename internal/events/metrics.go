package events

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
)

var (
	publishedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sleeve_selector",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Number of sizing events written to Kafka.",
	}, []string{"topic"})

	failedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sleeve_selector",
		Subsystem: "events",
		Name:      "failed_total",
		Help:      "Number of sizing events that could not be written, including breaker rejections.",
	}, []string{"topic"})

	droppedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sleeve_selector",
		Subsystem: "events",
		Name:      "dropped_total",
		Help:      "Number of sizing events dropped because the publish buffer was full.",
	})

	breakerStateGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sleeve_selector",
		Subsystem: "events",
		Name:      "breaker_state",
		Help:      "Publisher circuit breaker state: 0 closed, 1 half-open, 2 open.",
	})
)

func init() {
	prometheus.MustRegister(publishedCounter, failedCounter, droppedCounter, breakerStateGauge)
}

func recordPublished(topic string) {
	publishedCounter.WithLabelValues(topic).Inc()
}

func recordFailed(topic string) {
	failedCounter.WithLabelValues(topic).Inc()
}

func recordDropped() {
	droppedCounter.Inc()
}

func recordBreakerState(state gobreaker.State) {
	breakerStateGauge.Set(float64(state))
}
