package application

import (
	"context"
	"log/slog"

	"github.com/luxradio/queuebot/internal/modules/review_queue/application/ports"
	"github.com/luxradio/queuebot/internal/modules/review_queue/domain"
)

// DisplayEventHandler refreshes tier displays in response to queue
// change events. It subscribes to SubmissionCreated, TierChanged and
// SubmissionServed events and re-renders only the tiers whose
// membership changed.
type DisplayEventHandler struct {
	repo       domain.SubmissionRepository
	subscriber ports.EventSubscriber
	display    ports.DisplaySender
}

// NewDisplayEventHandler creates a new DisplayEventHandler.
func NewDisplayEventHandler(
	repo domain.SubmissionRepository,
	subscriber ports.EventSubscriber,
	display ports.DisplaySender,
) *DisplayEventHandler {
	return &DisplayEventHandler{
		repo:       repo,
		subscriber: subscriber,
		display:    display,
	}
}

// Start registers event handlers with the subscriber.
func (h *DisplayEventHandler) Start() {
	h.subscriber.OnSubmissionCreated(h.handleSubmissionCreated)
	h.subscriber.OnTierChanged(h.handleTierChanged)
	h.subscriber.OnSubmissionServed(h.handleSubmissionServed)

	slog.Debug("display event handlers properly registered")
}

func (h *DisplayEventHandler) handleSubmissionCreated(
	ctx context.Context,
	event domain.SubmissionCreatedEvent,
) {
	h.refreshTier(ctx, event.Submission.Tier)
}

func (h *DisplayEventHandler) handleTierChanged(
	ctx context.Context,
	event domain.TierChangedEvent,
) {
	h.refreshTier(ctx, event.From)
	h.refreshTier(ctx, event.To)
}

func (h *DisplayEventHandler) handleSubmissionServed(
	ctx context.Context,
	event domain.SubmissionServedEvent,
) {
	if err := h.display.AnnounceServed(ctx, event.Submission); err != nil {
		slog.Error(
			"failed to announce served submission",
			"public_id", event.Submission.PublicID,
			"error", err,
		)
	}
}

// refreshTier re-renders a single tier display. Removed submissions
// have no display to refresh.
func (h *DisplayEventHandler) refreshTier(ctx context.Context, tier domain.Tier) {
	if tier == domain.TierRemoved {
		return
	}

	subs, _, err := h.repo.ListByTier(ctx, tier, 0, 0)
	if err != nil {
		slog.Error(
			"failed to list tier for display refresh",
			"tier", tier,
			"error", err,
		)
		return
	}

	if err := h.display.UpdateTierDisplay(ctx, tier, subs); err != nil {
		slog.Error(
			"failed to update tier display",
			"tier", tier,
			"error", err,
		)
	}
}
