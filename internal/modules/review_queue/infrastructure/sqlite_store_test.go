package infrastructure

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/luxradio/queuebot/internal/modules/review_queue/domain"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "queue.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func insertSubmission(
	t *testing.T,
	store *SQLiteStore,
	owner snowflake.ID,
	handle string,
	tier domain.Tier,
) *domain.Submission {
	t.Helper()

	sub := domain.NewSubmission(owner, "owner", "artist", "title", "link", "", handle)
	if err := store.Create(context.Background(), sub); err != nil {
		t.Fatalf("failed to create submission: %v", err)
	}
	if tier != domain.TierFree {
		if _, err := store.SetTier(context.Background(), sub.PublicID, tier); err != nil {
			t.Fatalf("failed to set tier: %v", err)
		}
		sub.Tier = tier
	}
	return sub
}

func TestOpenSQLiteStore_RequiresPath(t *testing.T) {
	if _, err := OpenSQLiteStore("  "); err == nil {
		t.Error("expected an error for a blank path")
	}
}

func TestSQLiteStore_CreateAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	sub := domain.NewSubmission(
		snowflake.ID(42), "dj_owner", "Artist", "Title",
		"https://example.com/track", "late set", "dj_tok",
	)
	if err := store.Create(ctx, sub); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Seq == 0 || len(sub.PublicID) != 8 {
		t.Fatalf("expected identity assigned, got seq=%d id=%q", sub.Seq, sub.PublicID)
	}

	stored, err := store.GetByPublicID(ctx, sub.PublicID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.OwnerID != sub.OwnerID || stored.Artist != "Artist" || stored.Title != "Title" {
		t.Errorf("unexpected stored submission %+v", stored)
	}
	if stored.Note != "late set" || stored.TikTokHandle != "dj_tok" {
		t.Errorf("unexpected stored fields %+v", stored)
	}
	if stored.Tier != domain.TierFree || stored.PlayedAt != nil {
		t.Errorf("expected fresh Free-tier submission, got %+v", stored)
	}
	if stored.SubmittedAt.UnixMilli() != sub.SubmittedAt.UnixMilli() {
		t.Error("expected submitted time preserved to the millisecond")
	}

	if _, err := store.GetByPublicID(ctx, "missing1"); !errors.Is(err, domain.ErrSubmissionNotFound) {
		t.Errorf("expected ErrSubmissionNotFound, got %v", err)
	}
}

func TestSQLiteStore_SetTier(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	sub := insertSubmission(t, store, snowflake.ID(1), "", domain.TierFree)

	previous, err := store.SetTier(ctx, sub.PublicID, domain.TierFifteenSkip)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if previous != domain.TierFree {
		t.Errorf("expected previous tier %q, got %q", domain.TierFree, previous)
	}

	if _, err := store.SetTier(ctx, sub.PublicID, "VIP"); !errors.Is(err, domain.ErrInvalidTier) {
		t.Errorf("expected ErrInvalidTier, got %v", err)
	}
	if _, err := store.SetTier(ctx, "missing1", domain.TierFree); !errors.Is(err, domain.ErrSubmissionNotFound) {
		t.Errorf("expected ErrSubmissionNotFound, got %v", err)
	}
}

func TestSQLiteStore_SetTier_TerminalGuard(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	sub := insertSubmission(t, store, snowflake.ID(1), "", domain.TierPlayed)

	stored, _ := store.GetByPublicID(ctx, sub.PublicID)
	if stored.PlayedAt == nil {
		t.Fatal("expected played time to be stamped")
	}

	if _, err := store.SetTier(ctx, sub.PublicID, domain.TierFree); !errors.Is(err, domain.ErrAlreadyTerminal) {
		t.Errorf("expected ErrAlreadyTerminal, got %v", err)
	}
	if _, err := store.SetTier(ctx, sub.PublicID, domain.TierRemoved); err != nil {
		t.Errorf("expected retraction from played to succeed, got %v", err)
	}
	if _, err := store.SetTier(ctx, sub.PublicID, domain.TierRemoved); !errors.Is(err, domain.ErrAlreadyTerminal) {
		t.Errorf("expected double retraction to fail, got %v", err)
	}
}

func TestSQLiteStore_SetScore(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	active := insertSubmission(t, store, snowflake.ID(1), "", domain.TierFree)
	played := insertSubmission(t, store, snowflake.ID(2), "", domain.TierPlayed)

	if err := store.SetScore(ctx, active.Seq, 12.5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.SetScore(ctx, played.Seq, 99); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := store.GetByPublicID(ctx, active.PublicID)
	if stored.Score != 12.5 {
		t.Errorf("expected score 12.5, got %f", stored.Score)
	}
	stored, _ = store.GetByPublicID(ctx, played.PublicID)
	if stored.Score != 0 {
		t.Errorf("expected terminal score frozen, got %f", stored.Score)
	}
}

func TestSQLiteStore_ListByTier_Ordering(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	low := insertSubmission(t, store, snowflake.ID(1), "", domain.TierFree)
	high := insertSubmission(t, store, snowflake.ID(2), "", domain.TierFree)
	if err := store.SetScore(ctx, high.Seq, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	subs, total, err := store.ListByTier(ctx, domain.TierFree, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(subs) != 2 {
		t.Fatalf("expected both submissions, got %d/%d", len(subs), total)
	}
	if subs[0].PublicID != high.PublicID || subs[1].PublicID != low.PublicID {
		t.Errorf("expected score-descending order, got %q then %q",
			subs[0].PublicID, subs[1].PublicID)
	}
}

func TestSQLiteStore_ListByTier_Paging(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		insertSubmission(t, store, snowflake.ID(i+1), "", domain.TierTwentySkip)
	}

	subs, total, err := store.ListByTier(ctx, domain.TierTwentySkip, 2, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 5 {
		t.Errorf("expected total 5, got %d", total)
	}
	if len(subs) != 1 {
		t.Errorf("expected 1 submission on the last page, got %d", len(subs))
	}
}

func TestSQLiteStore_ActiveByOwner(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	insertSubmission(t, store, snowflake.ID(1), "", domain.TierFree)
	newest := insertSubmission(t, store, snowflake.ID(1), "", domain.TierFiveSkip)
	insertSubmission(t, store, snowflake.ID(1), "", domain.TierRemoved)

	sub, err := store.ActiveByOwner(ctx, snowflake.ID(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.PublicID != newest.PublicID {
		t.Errorf("expected newest non-terminal submission %q, got %q",
			newest.PublicID, sub.PublicID)
	}

	if _, err := store.ActiveByOwner(ctx, snowflake.ID(9)); !errors.Is(err, domain.ErrNoEligibleSubmission) {
		t.Errorf("expected ErrNoEligibleSubmission, got %v", err)
	}
}

func TestSQLiteStore_PromoteActive(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	sub := insertSubmission(t, store, snowflake.ID(1), "", domain.TierFree)

	snapshot, err := store.PromoteActive(ctx, snowflake.ID(1), domain.TierTenSkip)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.Tier != domain.TierFree {
		t.Errorf("expected pre-move snapshot tier %q, got %q", domain.TierFree, snapshot.Tier)
	}

	stored, _ := store.GetByPublicID(ctx, sub.PublicID)
	if stored.Tier != domain.TierTenSkip {
		t.Errorf("expected tier %q, got %q", domain.TierTenSkip, stored.Tier)
	}
}

func TestSQLiteStore_PromoteActive_NeverDemotes(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	sub := insertSubmission(t, store, snowflake.ID(1), "", domain.TierTwentyFivePlusSkip)

	_, err := store.PromoteActive(ctx, snowflake.ID(1), domain.TierFiveSkip)
	if !errors.Is(err, domain.ErrNoEligibleSubmission) {
		t.Fatalf("expected ErrNoEligibleSubmission, got %v", err)
	}

	stored, _ := store.GetByPublicID(ctx, sub.PublicID)
	if stored.Tier != domain.TierTwentyFivePlusSkip {
		t.Errorf("expected tier untouched, got %q", stored.Tier)
	}

	if _, err := store.PromoteActive(ctx, snowflake.ID(9), domain.TierTenSkip); !errors.Is(err, domain.ErrNoEligibleSubmission) {
		t.Errorf("expected ErrNoEligibleSubmission for an unknown owner, got %v", err)
	}
}

func TestSQLiteStore_PromoteActive_Concurrent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	sub := insertSubmission(t, store, snowflake.ID(1), "", domain.TierFree)

	targets := []domain.Tier{
		domain.TierFiveSkip,
		domain.TierTenSkip,
		domain.TierTwentyFivePlusSkip,
	}
	var wg sync.WaitGroup
	for i := 0; i < 15; i++ {
		wg.Add(1)
		go func(target domain.Tier) {
			defer wg.Done()
			_, err := store.PromoteActive(ctx, snowflake.ID(1), target)
			if err != nil && !errors.Is(err, domain.ErrNoEligibleSubmission) {
				t.Errorf("unexpected error: %v", err)
			}
		}(targets[i%len(targets)])
	}
	wg.Wait()

	stored, _ := store.GetByPublicID(ctx, sub.PublicID)
	if stored.Tier != domain.TierTwentyFivePlusSkip {
		t.Errorf("expected the highest target to win, got %q", stored.Tier)
	}
}

func TestSQLiteStore_ClaimHead(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	sub := insertSubmission(t, store, snowflake.ID(1), "dj_tok", domain.TierFree)
	if err := store.AddUserPoints(ctx, snowflake.ID(1), 30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.AddHandlePoints(ctx, "dj_tok", 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snapshot, err := store.ClaimHead(ctx, domain.TierFree)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.PublicID != sub.PublicID || snapshot.Tier != domain.TierFree {
		t.Errorf("expected pre-claim snapshot of %q, got %+v", sub.PublicID, snapshot)
	}

	stored, _ := store.GetByPublicID(ctx, sub.PublicID)
	if stored.Tier != domain.TierPlayed || stored.PlayedAt == nil {
		t.Errorf("expected claimed submission marked played, got %+v", stored)
	}

	userPoints, _ := store.UserPoints(ctx, snowflake.ID(1))
	handlePoints, _ := store.HandlePoints(ctx, "dj_tok")
	if userPoints != 0 || handlePoints != 0 {
		t.Errorf("expected point balances reset in the claim, got %d/%d",
			userPoints, handlePoints)
	}

	if _, err := store.ClaimHead(ctx, domain.TierFree); !errors.Is(err, domain.ErrNoCandidate) {
		t.Errorf("expected ErrNoCandidate on empty tier, got %v", err)
	}
}

func TestSQLiteStore_ClaimHead_Concurrent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	const count = 10
	for i := 0; i < count; i++ {
		insertSubmission(t, store, snowflake.ID(i+1), "", domain.TierFree)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		claimed = make(map[domain.PublicID]int, count)
	)
	for j := 0; j < count*2; j++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub, err := store.ClaimHead(ctx, domain.TierFree)
			if errors.Is(err, domain.ErrNoCandidate) {
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			mu.Lock()
			claimed[sub.PublicID]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(claimed) != count {
		t.Fatalf("expected exactly %d distinct claims, got %d", count, len(claimed))
	}
	for id, n := range claimed {
		if n != 1 {
			t.Errorf("submission %q was claimed %d times", id, n)
		}
	}
}

func TestSQLiteStore_PointsAccumulate(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.AddUserPoints(ctx, snowflake.ID(1), 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.AddUserPoints(ctx, snowflake.ID(1), 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.AddHandlePoints(ctx, "dj_tok", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	userPoints, err := store.UserPoints(ctx, snowflake.ID(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userPoints != 15 {
		t.Errorf("expected 15 user points, got %d", userPoints)
	}

	handlePoints, _ := store.HandlePoints(ctx, "dj_tok")
	if handlePoints != 3 {
		t.Errorf("expected 3 handle points, got %d", handlePoints)
	}

	unknown, err := store.UserPoints(ctx, snowflake.ID(9))
	if err != nil || unknown != 0 {
		t.Errorf("expected zero points for unknown owner, got %d (%v)", unknown, err)
	}
}

func TestSQLiteStore_Wallet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Credit(ctx, snowflake.ID(1), 300); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Credit(ctx, snowflake.ID(2), 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	balance, err := store.Balance(ctx, snowflake.ID(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance != 300 {
		t.Errorf("expected balance 300, got %d", balance)
	}

	entries, err := store.TopBalances(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 || entries[0].OwnerID != snowflake.ID(1) {
		t.Errorf("unexpected leaderboard %+v", entries)
	}
}

func TestSQLiteStore_AddWatchTime_CarriesRemainder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	coins, err := store.AddWatchTime(ctx, snowflake.ID(1), 1700)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if coins != 0 {
		t.Errorf("expected no coins for 1700s, got %d", coins)
	}

	coins, err = store.AddWatchTime(ctx, snowflake.ID(1), 3700)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if coins != 3 {
		t.Errorf("expected 3 coins for the 5400s total, got %d", coins)
	}

	balance, _ := store.Balance(ctx, snowflake.ID(1))
	if balance != 3 {
		t.Errorf("expected balance 3, got %d", balance)
	}
}

func TestSQLiteStore_PurchaseSkip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	sub := insertSubmission(t, store, snowflake.ID(1), "", domain.TierFree)
	if err := store.Credit(ctx, snowflake.ID(1), 1200); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snapshot, err := store.PurchaseSkip(ctx, snowflake.ID(1), domain.TierTenSkip, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.Tier != domain.TierFree {
		t.Errorf("expected pre-move snapshot, got tier %q", snapshot.Tier)
	}

	balance, _ := store.Balance(ctx, snowflake.ID(1))
	if balance != 200 {
		t.Errorf("expected balance 200 after purchase, got %d", balance)
	}
	stored, _ := store.GetByPublicID(ctx, sub.PublicID)
	if stored.Tier != domain.TierTenSkip {
		t.Errorf("expected tier %q, got %q", domain.TierTenSkip, stored.Tier)
	}
}

func TestSQLiteStore_PurchaseSkip_Atomic(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	sub := insertSubmission(t, store, snowflake.ID(1), "", domain.TierFree)
	if err := store.Credit(ctx, snowflake.ID(1), 500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := store.PurchaseSkip(ctx, snowflake.ID(1), domain.TierTenSkip, 1000); !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	balance, _ := store.Balance(ctx, snowflake.ID(1))
	stored, _ := store.GetByPublicID(ctx, sub.PublicID)
	if balance != 500 || stored.Tier != domain.TierFree {
		t.Errorf("expected failed purchase to change nothing, got balance %d tier %q",
			balance, stored.Tier)
	}

	// Enough coins but nothing purchasable: also all-or-nothing.
	if err := store.Credit(ctx, snowflake.ID(1), 1000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.SetTier(ctx, sub.PublicID, domain.TierTwentySkip); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.PurchaseSkip(ctx, snowflake.ID(1), domain.TierTenSkip, 1000); !errors.Is(err, domain.ErrNoEligibleSubmission) {
		t.Fatalf("expected ErrNoEligibleSubmission, got %v", err)
	}
	balance, _ = store.Balance(ctx, snowflake.ID(1))
	if balance != 1500 {
		t.Errorf("expected balance untouched, got %d", balance)
	}
}
