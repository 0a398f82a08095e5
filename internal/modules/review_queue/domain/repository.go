package domain

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// SubmissionRepository is the durable store that exclusively owns
// submission records. Implementations must make every read-then-write
// tier mutation atomic; callers assume arbitrary interleaving between
// their own calls.
type SubmissionRepository interface {
	// Create persists a new submission, assigning its sequence number and
	// a freshly generated public ID (regenerated on the unlikely
	// collision). The passed submission is updated in place.
	Create(ctx context.Context, sub *Submission) error

	// GetByPublicID returns the submission, or ErrSubmissionNotFound.
	GetByPublicID(ctx context.Context, id PublicID) (*Submission, error)

	// SetTier atomically reassigns the submission's tier and returns the
	// tier it was in immediately before, so callers know which two
	// displays to refresh. Mutating a terminal submission fails with
	// ErrAlreadyTerminal, except moves into TierRemoved, which are
	// allowed from any tier other than TierRemoved itself.
	SetTier(ctx context.Context, id PublicID, tier Tier) (Tier, error)

	// SetScore writes a recomputed score. It is a no-op on terminal
	// submissions: the last score is frozen for historical display.
	SetScore(ctx context.Context, seq int64, score float64) error

	// ListByTier returns one page of the tier's submissions in serving
	// order plus the total count. TierFree orders by score descending
	// then sequence ascending; every other tier orders by sequence
	// ascending. A limit <= 0 returns all entries.
	ListByTier(ctx context.Context, tier Tier, limit, offset int) ([]*Submission, int, error)

	// ActiveByOwner returns the owner's newest non-terminal submission,
	// or ErrNoEligibleSubmission.
	ActiveByOwner(ctx context.Context, owner snowflake.ID) (*Submission, error)

	// PromoteActive moves the owner's newest non-terminal submission to
	// target, but only when target is a strictly higher-priority tier
	// than the one it currently sits in. The candidate lookup, the rank
	// comparison and the write share one transaction, so a promotion won
	// by a concurrent larger gift can never be overwritten by a smaller
	// one. Returns the pre-move snapshot, or ErrNoEligibleSubmission
	// when the owner has no active submission or it is already at or
	// above target.
	PromoteActive(ctx context.Context, owner snowflake.ID, target Tier) (*Submission, error)

	// ClaimHead atomically selects the head of the tier per its ordering
	// rule, moves it to TierPlayed stamping the played time, and — when
	// the tier is TierFree — resets the owner's and linked handle's point
	// balances within the same transaction. A candidate claimed by a
	// concurrent caller is skipped in favor of the next one. Returns the
	// pre-claim snapshot, or ErrNoCandidate when the tier is empty.
	ClaimHead(ctx context.Context, tier Tier) (*Submission, error)
}

// PointsRepository holds the externally accrued engagement point
// balances that feed the scoring aggregator. The queue core only reads
// them and zeroes them when a Free-tier submission is served.
type PointsRepository interface {
	UserPoints(ctx context.Context, owner snowflake.ID) (int64, error)
	HandlePoints(ctx context.Context, handle string) (int64, error)
	AddUserPoints(ctx context.Context, owner snowflake.ID, points int64) error
	AddHandlePoints(ctx context.Context, handle string, points int64) error
}

// WalletEntry is one row of the coin leaderboard.
type WalletEntry struct {
	OwnerID snowflake.ID
	Balance int64
}

// WalletRepository holds Luxury Coin balances and the watch-time
// accumulator that earns them.
type WalletRepository interface {
	Balance(ctx context.Context, owner snowflake.ID) (int64, error)
	Credit(ctx context.Context, owner snowflake.ID, coins int64) error
	TopBalances(ctx context.Context, limit int) ([]WalletEntry, error)

	// AddWatchTime accumulates watch seconds and converts every full
	// half hour into one coin, carrying the remainder. Returns the coins
	// awarded by this call.
	AddWatchTime(ctx context.Context, owner snowflake.ID, seconds int64) (int64, error)

	// PurchaseSkip debits cost from the owner's balance and moves their
	// newest purchasable submission (Free, Pending Skips or 5 Skip) to
	// the target tier in a single transaction. A failed precondition
	// leaves both the balance and the tier untouched. Returns the moved
	// submission's pre-move snapshot.
	PurchaseSkip(ctx context.Context, owner snowflake.ID, target Tier, cost int64) (*Submission, error)
}
