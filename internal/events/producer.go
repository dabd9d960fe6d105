package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// MessageWriter writes messages to a topic.
type MessageWriter interface {
	WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error
}

// ProducerConfig tunes the writers a KafkaProducer opens.
type ProducerConfig struct {
	Brokers      []string
	BatchTimeout time.Duration
	Logger       zerolog.Logger
}

// KafkaProducer opens one writer per topic on first use. Messages are keyed
// by table, so the hash balancer keeps a table's events on one partition.
type KafkaProducer struct {
	cfg     ProducerConfig
	mu      sync.Mutex
	closed  bool
	writers map[string]*kafka.Writer
}

// NewKafkaProducer creates a KafkaProducer. A zero BatchTimeout defaults to 50ms.
func NewKafkaProducer(cfg ProducerConfig) *KafkaProducer {
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}
	return &KafkaProducer{cfg: cfg, writers: make(map[string]*kafka.Writer)}
}

// WriteMessages implements MessageWriter.
func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	writer, err := p.writer(topic)
	if err != nil {
		return err
	}
	return writer.WriteMessages(ctx, msgs...)
}

func (p *KafkaProducer) writer(topic string) (*kafka.Writer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}
	if w, ok := p.writers[topic]; ok {
		return w, nil
	}

	log := p.cfg.Logger.With().Str("topic", topic).Logger()
	w := &kafka.Writer{
		Addr:                   kafka.TCP(p.cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		Compression:            kafka.Snappy,
		BatchTimeout:           p.cfg.BatchTimeout,
		AllowAutoTopicCreation: true,
		Logger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Debug().Msgf(msg, args...)
		}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Error().Msgf(msg, args...)
		}),
	}
	p.writers[topic] = w
	return w, nil
}

// Close flushes and closes every writer. Later writes fail with ErrClosed.
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	var errs []error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close writer %s: %w", topic, err))
		}
		delete(p.writers, topic)
	}
	return errors.Join(errs...)
}
