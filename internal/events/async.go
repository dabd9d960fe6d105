package events

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// ErrQueueFull is returned when the async buffer cannot take another event.
var ErrQueueFull = errors.New("event queue full")

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("event publisher closed")

// AsyncPublisher hands events to a background worker so request handlers
// never wait on the broker. Events are dropped when the buffer is full.
type AsyncPublisher struct {
	next   Publisher
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan SizeResolved
	wg     sync.WaitGroup
}

// NewAsyncPublisher starts the worker draining into next.
func NewAsyncPublisher(next Publisher, buffer int, logger zerolog.Logger) *AsyncPublisher {
	if buffer <= 0 {
		buffer = 1
	}
	p := &AsyncPublisher{
		next:   next,
		logger: logger,
		queue:  make(chan SizeResolved, buffer),
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// Publish enqueues the event without blocking.
func (p *AsyncPublisher) Publish(_ context.Context, event SizeResolved) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.queue <- event:
		return nil
	default:
		recordDropped()
		return ErrQueueFull
	}
}

// Close stops accepting events, drains the buffer and waits for the worker.
func (p *AsyncPublisher) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *AsyncPublisher) run() {
	defer p.wg.Done()
	for event := range p.queue {
		if err := p.next.Publish(context.Background(), event); err != nil {
			p.logger.Warn().Err(err).Str("event_id", event.EventID).Msg("failed to publish sizing event")
		}
	}
}
