package usecases

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/disgoorg/snowflake/v2"
	"github.com/luxradio/queuebot/internal/modules/review_queue/application/ports"
	"github.com/luxradio/queuebot/internal/modules/review_queue/domain"
)

// GiftTier maps a cumulative coin threshold to a target tier.
type GiftTier struct {
	Coins int64
	Tier  domain.Tier
}

// DefaultGiftTiers is the threshold table used in production.
func DefaultGiftTiers() []GiftTier {
	return []GiftTier{
		{Coins: 5000, Tier: domain.TierTwentyFivePlusSkip},
		{Coins: 2000, Tier: domain.TierTenSkip},
		{Coins: 1000, Tier: domain.TierFiveSkip},
	}
}

// DefaultSkipCost is the coin cost of a purchased skip.
const DefaultSkipCost = 1000

// MoveInput contains the input for the Move use case.
type MoveInput struct {
	PublicID domain.PublicID
	Target   domain.Tier
}

// MoveOutput contains the result of the Move use case.
type MoveOutput struct {
	Previous domain.Tier
}

// ApplyGiftInput contains the input for the ApplyGift use case.
type ApplyGiftInput struct {
	OwnerID snowflake.ID
	// CumulativeCoins is the running coin-value total attributed to the
	// owner within the current session. Callers report totals, not
	// per-gift deltas, so retried or reordered events cannot promote
	// twice.
	CumulativeCoins int64
}

// ApplyGiftOutput contains the result of the ApplyGift use case.
// Promoted is false for every no-op outcome: no threshold met, no active
// submission, or the submission already at or above the target tier.
type ApplyGiftOutput struct {
	Promoted bool
	PublicID domain.PublicID
	From     domain.Tier
	To       domain.Tier
}

// PurchaseSkipInput contains the input for the PurchaseSkip use case.
type PurchaseSkipInput struct {
	OwnerID snowflake.ID
}

// PurchaseSkipOutput contains the result of the PurchaseSkip use case.
type PurchaseSkipOutput struct {
	Submission *domain.Submission // pre-move snapshot
	Target     domain.Tier
	Cost       int64
}

// TransitionService applies externally triggered tier changes
// idempotently and atomically.
type TransitionService struct {
	repo      domain.SubmissionRepository
	wallet    domain.WalletRepository
	publisher ports.EventPublisher

	giftTiers  []GiftTier // sorted by Coins descending
	skipCost   int64
	skipTarget domain.Tier
}

// NewTransitionService creates a new TransitionService. Passing nil
// giftTiers selects the default threshold table; a non-positive skipCost
// selects the default cost.
func NewTransitionService(
	repo domain.SubmissionRepository,
	wallet domain.WalletRepository,
	publisher ports.EventPublisher,
	giftTiers []GiftTier,
	skipCost int64,
) *TransitionService {
	if giftTiers == nil {
		giftTiers = DefaultGiftTiers()
	}
	sorted := make([]GiftTier, len(giftTiers))
	copy(sorted, giftTiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Coins > sorted[j].Coins })

	if skipCost <= 0 {
		skipCost = DefaultSkipCost
	}

	return &TransitionService{
		repo:       repo,
		wallet:     wallet,
		publisher:  publisher,
		giftTiers:  sorted,
		skipCost:   skipCost,
		skipTarget: domain.TierTenSkip,
	}
}

// notifyTierChanged publishes a TierChangedEvent, suppressing true
// no-ops so displays are only refreshed when membership changed.
func (t *TransitionService) notifyTierChanged(id domain.PublicID, from, to domain.Tier) {
	if t.publisher == nil || from == to {
		return
	}
	t.publisher.PublishTierChanged(domain.TierChangedEvent{
		PublicID: id,
		From:     from,
		To:       to,
	})
}

// Move reassigns a submission to a specific tier (admin move). Returns
// the tier the submission was in before the change.
func (t *TransitionService) Move(
	ctx context.Context,
	input MoveInput,
) (*MoveOutput, error) {
	previous, err := t.repo.SetTier(ctx, input.PublicID, input.Target)
	if err != nil {
		return nil, err
	}

	slog.Info("moved submission",
		"public_id", input.PublicID,
		"from", previous,
		"to", input.Target,
	)
	t.notifyTierChanged(input.PublicID, previous, input.Target)

	return &MoveOutput{Previous: previous}, nil
}

// Remove retracts a submission into the Removed tier. Removing an
// already removed submission fails with ErrAlreadyTerminal.
func (t *TransitionService) Remove(
	ctx context.Context,
	id domain.PublicID,
) (*MoveOutput, error) {
	return t.Move(ctx, MoveInput{PublicID: id, Target: domain.TierRemoved})
}

// targetForCoins returns the tier for the highest threshold met, if any.
func (t *TransitionService) targetForCoins(coins int64) (domain.Tier, bool) {
	for _, gt := range t.giftTiers {
		if coins >= gt.Coins {
			return gt.Tier, true
		}
	}
	return "", false
}

// ApplyGift applies the threshold-gift policy to the owner's active
// submission. Thresholds are matched against a cumulative total and the
// store promotes only to a strictly higher-priority tier in a single
// transaction, so a smaller gift racing a larger one can never demote.
func (t *TransitionService) ApplyGift(
	ctx context.Context,
	input ApplyGiftInput,
) (*ApplyGiftOutput, error) {
	target, ok := t.targetForCoins(input.CumulativeCoins)
	if !ok {
		return &ApplyGiftOutput{}, nil
	}

	sub, err := t.repo.PromoteActive(ctx, input.OwnerID, target)
	if errors.Is(err, domain.ErrNoEligibleSubmission) {
		// No active submission, or it already sits at or above the
		// computed target.
		return &ApplyGiftOutput{}, nil
	}
	if err != nil {
		return nil, err
	}

	slog.Info("gift promotion",
		"owner_id", input.OwnerID,
		"public_id", sub.PublicID,
		"coins", input.CumulativeCoins,
		"from", sub.Tier,
		"to", target,
	)
	t.notifyTierChanged(sub.PublicID, sub.Tier, target)

	return &ApplyGiftOutput{
		Promoted: true,
		PublicID: sub.PublicID,
		From:     sub.Tier,
		To:       target,
	}, nil
}

// PurchaseSkip spends coins to move the owner's newest eligible
// submission to the purchased skip tier. Debit and move are
// all-or-nothing in the store.
func (t *TransitionService) PurchaseSkip(
	ctx context.Context,
	input PurchaseSkipInput,
) (*PurchaseSkipOutput, error) {
	sub, err := t.wallet.PurchaseSkip(ctx, input.OwnerID, t.skipTarget, t.skipCost)
	if err != nil {
		return nil, err
	}

	slog.Info("skip purchased",
		"owner_id", input.OwnerID,
		"public_id", sub.PublicID,
		"from", sub.Tier,
		"to", t.skipTarget,
		"cost", t.skipCost,
	)
	t.notifyTierChanged(sub.PublicID, sub.Tier, t.skipTarget)

	return &PurchaseSkipOutput{
		Submission: sub,
		Target:     t.skipTarget,
		Cost:       t.skipCost,
	}, nil
}
