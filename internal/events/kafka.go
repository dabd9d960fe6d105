package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"
)

// KafkaPublisher serialises events to JSON and writes them to a topic
// behind a circuit breaker.
type KafkaPublisher struct {
	writer  MessageWriter
	topic   string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
}

// NewKafkaPublisher constructs a KafkaPublisher. The breaker opens after
// five consecutive failures and probes again after thirty seconds.
func NewKafkaPublisher(writer MessageWriter, topic string, timeout time.Duration, logger zerolog.Logger) *KafkaPublisher {
	settings := gobreaker.Settings{
		Name:        "kafka:" + topic,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			recordBreakerState(to)
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("event publisher circuit changed state")
		},
	}
	return &KafkaPublisher{
		writer:  writer,
		topic:   topic,
		timeout: timeout,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Publish implements Publisher.
func (p *KafkaPublisher) Publish(ctx context.Context, event SizeResolved) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := validatePayload(body); err != nil {
		recordFailed(p.topic)
		return err
	}
	msg := kafka.Message{
		Key:   []byte(event.Table),
		Value: body,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeSizeResolved)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	_, err = p.breaker.Execute(func() (interface{}, error) {
		return nil, p.writer.WriteMessages(ctx, p.topic, msg)
	})
	if err != nil {
		recordFailed(p.topic)
		return fmt.Errorf("publish %s: %w", EventTypeSizeResolved, err)
	}
	recordPublished(p.topic)
	return nil
}
