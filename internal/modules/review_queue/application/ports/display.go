package ports

import (
	"context"

	"github.com/luxradio/queuebot/internal/modules/review_queue/domain"
)

// DisplaySender renders a tier's queue somewhere users can see it.
// The core only decides which tier changed; rendering, channels and
// message bookkeeping belong to the implementation.
type DisplaySender interface {
	// UpdateTierDisplay replaces the display for the tier with the given
	// submissions, already in serving order.
	UpdateTierDisplay(ctx context.Context, tier domain.Tier, subs []*domain.Submission) error

	// AnnounceServed posts the "now playing" notice for a just-claimed
	// submission.
	AnnounceServed(ctx context.Context, sub *domain.Submission) error
}
