package usecases

import (
	"context"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/luxradio/queuebot/internal/modules/review_queue/domain"
)

// CoinsPerHundredGifted is the Luxury Coin reward per 100 coins of gift
// value.
const CoinsPerHundredGifted = 2

// DefaultLeaderboardSize is the number of entries on the coin
// leaderboard.
const DefaultLeaderboardSize = 10

// WalletService manages Luxury Coin balances: admin grants, gift and
// watch-time rewards, and the leaderboard.
type WalletService struct {
	wallet domain.WalletRepository
}

// NewWalletService creates a new WalletService.
func NewWalletService(wallet domain.WalletRepository) *WalletService {
	return &WalletService{wallet: wallet}
}

// Balance returns the owner's current coin balance.
func (w *WalletService) Balance(ctx context.Context, owner snowflake.ID) (int64, error) {
	return w.wallet.Balance(ctx, owner)
}

// Grant credits coins to an owner (admin command).
func (w *WalletService) Grant(ctx context.Context, owner snowflake.ID, coins int64) error {
	if err := w.wallet.Credit(ctx, owner, coins); err != nil {
		return err
	}
	slog.Info("granted coins", "owner_id", owner, "coins", coins)
	return nil
}

// Leaderboard returns the top coin balances. A non-positive limit
// selects the default size.
func (w *WalletService) Leaderboard(ctx context.Context, limit int) ([]domain.WalletEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	return w.wallet.TopBalances(ctx, limit)
}

// AwardGiftCoins rewards a gift: 2 coins per full 100 coins of gift
// value. Returns the coins credited, which is zero for gifts under 100.
func (w *WalletService) AwardGiftCoins(
	ctx context.Context,
	owner snowflake.ID,
	giftValue int64,
) (int64, error) {
	coins := giftValue / 100 * CoinsPerHundredGifted
	if coins <= 0 {
		return 0, nil
	}
	if err := w.wallet.Credit(ctx, owner, coins); err != nil {
		return 0, err
	}
	return coins, nil
}

// AwardWatchTime accumulates watch seconds toward coin payouts (one
// coin per full half hour, remainder carried). Returns the coins
// awarded by this report.
func (w *WalletService) AwardWatchTime(
	ctx context.Context,
	owner snowflake.ID,
	seconds int64,
) (int64, error) {
	return w.wallet.AddWatchTime(ctx, owner, seconds)
}
