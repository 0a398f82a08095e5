package usecases

import (
	"context"
	"errors"
	"log/slog"

	"github.com/luxradio/queuebot/internal/modules/review_queue/application/ports"
	"github.com/luxradio/queuebot/internal/modules/review_queue/domain"
)

// ClaimNextOutput contains the result of the ClaimNext use case.
// Submission is nil when no eligible submission exists; that is a valid
// result, not an error.
type ClaimNextOutput struct {
	Submission *domain.Submission
}

// ClaimService implements the queue selector.
type ClaimService struct {
	repo      domain.SubmissionRepository
	publisher ports.EventPublisher
}

// NewClaimService creates a new ClaimService.
func NewClaimService(
	repo domain.SubmissionRepository,
	publisher ports.EventPublisher,
) *ClaimService {
	return &ClaimService{
		repo:      repo,
		publisher: publisher,
	}
}

// ClaimNext claims the next submission to serve: tiers are visited in
// ascending rank order and the first tier with a claimable member yields
// its head. The store makes the select-and-claim atomic, so two
// concurrent callers can never be handed the same submission. The
// returned snapshot still carries the tier the submission was claimed
// from.
func (c *ClaimService) ClaimNext(ctx context.Context) (*ClaimNextOutput, error) {
	for _, tier := range domain.ClaimableTiers() {
		sub, err := c.repo.ClaimHead(ctx, tier)
		if errors.Is(err, domain.ErrNoCandidate) {
			continue
		}
		if err != nil {
			return nil, err
		}

		slog.Info("claimed submission",
			"public_id", sub.PublicID,
			"tier", sub.Tier,
			"owner_id", sub.OwnerID,
		)

		if c.publisher != nil {
			c.publisher.PublishSubmissionServed(domain.SubmissionServedEvent{
				Submission: sub.Clone(),
			})
			c.publisher.PublishTierChanged(domain.TierChangedEvent{
				PublicID: sub.PublicID,
				From:     sub.Tier,
				To:       domain.TierPlayed,
			})
		}

		return &ClaimNextOutput{Submission: sub}, nil
	}

	return &ClaimNextOutput{}, nil
}
