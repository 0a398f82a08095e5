package usecases

import (
	"context"
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/luxradio/queuebot/internal/modules/review_queue/infrastructure"
)

func TestWalletService_GrantAndBalance(t *testing.T) {
	store := infrastructure.NewMemoryStore()
	svc := NewWalletService(store)
	ctx := context.Background()

	if err := svc.Grant(ctx, snowflake.ID(42), 250); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Grant(ctx, snowflake.ID(42), 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	balance, err := svc.Balance(ctx, snowflake.ID(42))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance != 300 {
		t.Errorf("expected balance 300, got %d", balance)
	}
}

func TestWalletService_Balance_UnknownOwner(t *testing.T) {
	store := infrastructure.NewMemoryStore()
	svc := NewWalletService(store)

	balance, err := svc.Balance(context.Background(), snowflake.ID(99))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance != 0 {
		t.Errorf("expected zero balance for unknown owner, got %d", balance)
	}
}

func TestWalletService_AwardGiftCoins(t *testing.T) {
	tests := []struct {
		name      string
		giftValue int64
		coins     int64
	}{
		{"below reward unit", 99, 0},
		{"one unit", 100, 2},
		{"partial second unit", 250, 4},
		{"many units", 5000, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := infrastructure.NewMemoryStore()
			svc := NewWalletService(store)
			ctx := context.Background()

			coins, err := svc.AwardGiftCoins(ctx, snowflake.ID(42), tt.giftValue)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if coins != tt.coins {
				t.Errorf("expected %d coins, got %d", tt.coins, coins)
			}

			balance, _ := svc.Balance(ctx, snowflake.ID(42))
			if balance != tt.coins {
				t.Errorf("expected balance %d, got %d", tt.coins, balance)
			}
		})
	}
}

func TestWalletService_AwardWatchTime_CarriesRemainder(t *testing.T) {
	store := infrastructure.NewMemoryStore()
	svc := NewWalletService(store)
	ctx := context.Background()

	coins, err := svc.AwardWatchTime(ctx, snowflake.ID(42), 1700)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if coins != 0 {
		t.Errorf("expected no coins for 1700s, got %d", coins)
	}

	// 1700 + 200 crosses the half-hour mark; 100s carries over.
	coins, err = svc.AwardWatchTime(ctx, snowflake.ID(42), 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if coins != 1 {
		t.Errorf("expected 1 coin after crossing 1800s, got %d", coins)
	}

	coins, err = svc.AwardWatchTime(ctx, snowflake.ID(42), 1700)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if coins != 1 {
		t.Errorf("expected carried remainder to count, got %d", coins)
	}

	balance, _ := svc.Balance(ctx, snowflake.ID(42))
	if balance != 2 {
		t.Errorf("expected balance 2, got %d", balance)
	}
}

func TestWalletService_Leaderboard(t *testing.T) {
	store := infrastructure.NewMemoryStore()
	svc := NewWalletService(store)
	ctx := context.Background()

	for i, coins := range []int64{50, 300, 100} {
		if err := svc.Grant(ctx, snowflake.ID(i+1), coins); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	entries, err := svc.Leaderboard(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].OwnerID != snowflake.ID(2) || entries[0].Balance != 300 {
		t.Errorf("unexpected top entry %+v", entries[0])
	}
	if entries[1].OwnerID != snowflake.ID(3) || entries[1].Balance != 100 {
		t.Errorf("unexpected second entry %+v", entries[1])
	}
}

func TestPointsService_Accumulates(t *testing.T) {
	store := infrastructure.NewMemoryStore()
	svc := NewPointsService(store)
	ctx := context.Background()

	if err := svc.AwardUserPoints(ctx, snowflake.ID(42), 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.AwardUserPoints(ctx, snowflake.ID(42), 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.AwardHandlePoints(ctx, "dj_tok", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	points, err := svc.UserPoints(ctx, snowflake.ID(42))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if points != 15 {
		t.Errorf("expected 15 user points, got %d", points)
	}

	handlePoints, err := store.HandlePoints(ctx, "dj_tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if handlePoints != 3 {
		t.Errorf("expected 3 handle points, got %d", handlePoints)
	}
}
