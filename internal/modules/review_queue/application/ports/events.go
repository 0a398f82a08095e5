package ports

import (
	"context"

	"github.com/luxradio/queuebot/internal/modules/review_queue/domain"
)

// EventPublisher publishes queue change events for async consumption.
type EventPublisher interface {
	PublishSubmissionCreated(event domain.SubmissionCreatedEvent)
	PublishTierChanged(event domain.TierChangedEvent)
	PublishSubmissionServed(event domain.SubmissionServedEvent)
}

// EventSubscriber registers handlers for queue change events.
type EventSubscriber interface {
	OnSubmissionCreated(handler func(context.Context, domain.SubmissionCreatedEvent))
	OnTierChanged(handler func(context.Context, domain.TierChangedEvent))
	OnSubmissionServed(handler func(context.Context, domain.SubmissionServedEvent))
}
