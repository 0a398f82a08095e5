package infrastructure

import (
	"context"
	"log/slog"
	"sync"

	"github.com/luxradio/queuebot/internal/modules/review_queue/application/ports"
	"github.com/luxradio/queuebot/internal/modules/review_queue/domain"
)

// DefaultEventBufferSize is the default buffer size for event channels.
const DefaultEventBufferSize = 100

// Compile-time checks that ChannelEventBus implements ports interfaces.
var (
	_ ports.EventPublisher  = (*ChannelEventBus)(nil)
	_ ports.EventSubscriber = (*ChannelEventBus)(nil)
)

// ChannelEventBus provides a channel-based event bus for async event
// handling. It implements both EventPublisher and EventSubscriber.
type ChannelEventBus struct {
	submissionCreated chan domain.SubmissionCreatedEvent
	tierChanged       chan domain.TierChangedEvent
	submissionServed  chan domain.SubmissionServedEvent

	submissionCreatedHandlers []func(context.Context, domain.SubmissionCreatedEvent)
	tierChangedHandlers       []func(context.Context, domain.TierChangedEvent)
	submissionServedHandlers  []func(context.Context, domain.SubmissionServedEvent)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
	mu     sync.RWMutex
}

// NewChannelEventBus creates a new ChannelEventBus with the given buffer
// size and starts its dispatchers.
func NewChannelEventBus(bufferSize int) *ChannelEventBus {
	if bufferSize <= 0 {
		bufferSize = DefaultEventBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	bus := &ChannelEventBus{
		submissionCreated: make(chan domain.SubmissionCreatedEvent, bufferSize),
		tierChanged:       make(chan domain.TierChangedEvent, bufferSize),
		submissionServed:  make(chan domain.SubmissionServedEvent, bufferSize),
		ctx:               ctx,
		cancel:            cancel,
	}

	bus.wg.Add(3)
	go bus.dispatchSubmissionCreated()
	go bus.dispatchTierChanged()
	go bus.dispatchSubmissionServed()

	return bus
}

func (b *ChannelEventBus) dispatchSubmissionCreated() {
	defer b.wg.Done()
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-b.submissionCreated:
			if !ok {
				return
			}
			b.mu.RLock()
			handlers := b.submissionCreatedHandlers
			b.mu.RUnlock()
			for _, handler := range handlers {
				handler(b.ctx, event)
			}
		}
	}
}

func (b *ChannelEventBus) dispatchTierChanged() {
	defer b.wg.Done()
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-b.tierChanged:
			if !ok {
				return
			}
			b.mu.RLock()
			handlers := b.tierChangedHandlers
			b.mu.RUnlock()
			for _, handler := range handlers {
				handler(b.ctx, event)
			}
		}
	}
}

func (b *ChannelEventBus) dispatchSubmissionServed() {
	defer b.wg.Done()
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-b.submissionServed:
			if !ok {
				return
			}
			b.mu.RLock()
			handlers := b.submissionServedHandlers
			b.mu.RUnlock()
			for _, handler := range handlers {
				handler(b.ctx, event)
			}
		}
	}
}

// --- EventPublisher interface ---

// PublishSubmissionCreated publishes a SubmissionCreatedEvent.
// Non-blocking: if the channel buffer is full, the event is dropped with
// a warning.
func (b *ChannelEventBus) PublishSubmissionCreated(event domain.SubmissionCreatedEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", "SubmissionCreated")
		return
	}

	select {
	case b.submissionCreated <- event:
		slog.Debug("published event", "type", "SubmissionCreated",
			"public_id", event.Submission.PublicID)
	default:
		slog.Warn("event buffer full, dropping event", "type", "SubmissionCreated")
	}
}

// PublishTierChanged publishes a TierChangedEvent.
// Non-blocking: if the channel buffer is full, the event is dropped with
// a warning.
func (b *ChannelEventBus) PublishTierChanged(event domain.TierChangedEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", "TierChanged")
		return
	}

	select {
	case b.tierChanged <- event:
		slog.Debug("published event", "type", "TierChanged",
			"public_id", event.PublicID, "from", event.From, "to", event.To)
	default:
		slog.Warn("event buffer full, dropping event", "type", "TierChanged")
	}
}

// PublishSubmissionServed publishes a SubmissionServedEvent.
// Non-blocking: if the channel buffer is full, the event is dropped with
// a warning.
func (b *ChannelEventBus) PublishSubmissionServed(event domain.SubmissionServedEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", "SubmissionServed")
		return
	}

	select {
	case b.submissionServed <- event:
		slog.Debug("published event", "type", "SubmissionServed",
			"public_id", event.Submission.PublicID)
	default:
		slog.Warn("event buffer full, dropping event", "type", "SubmissionServed")
	}
}

// --- EventSubscriber interface ---

// OnSubmissionCreated registers a handler for SubmissionCreatedEvent.
func (b *ChannelEventBus) OnSubmissionCreated(
	handler func(context.Context, domain.SubmissionCreatedEvent),
) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.submissionCreatedHandlers = append(b.submissionCreatedHandlers, handler)
}

// OnTierChanged registers a handler for TierChangedEvent.
func (b *ChannelEventBus) OnTierChanged(
	handler func(context.Context, domain.TierChangedEvent),
) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tierChangedHandlers = append(b.tierChangedHandlers, handler)
}

// OnSubmissionServed registers a handler for SubmissionServedEvent.
func (b *ChannelEventBus) OnSubmissionServed(
	handler func(context.Context, domain.SubmissionServedEvent),
) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.submissionServedHandlers = append(b.submissionServedHandlers, handler)
}

// Close closes all event channels and stops dispatchers.
// After calling Close, publishing will no longer send events.
func (b *ChannelEventBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()

	close(b.submissionCreated)
	close(b.tierChanged)
	close(b.submissionServed)

	b.wg.Wait()

	slog.Debug("channel event bus closed")
}
