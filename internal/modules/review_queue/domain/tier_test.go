package domain

import "testing"

func TestRankOf_OrdersTiers(t *testing.T) {
	ordered := []Tier{
		TierTwentyFivePlusSkip,
		TierTwentySkip,
		TierFifteenSkip,
		TierTenSkip,
		TierFiveSkip,
		TierFree,
		TierPendingSkips,
	}

	prev := 0
	for _, tier := range ordered {
		rank, ok := RankOf(tier)
		if !ok {
			t.Fatalf("expected %q to have a rank", tier)
		}
		if rank <= prev {
			t.Errorf("expected rank of %q to be greater than %d, got %d", tier, prev, rank)
		}
		prev = rank
	}
}

func TestRankOf_TerminalTiersHaveNoRank(t *testing.T) {
	for _, tier := range []Tier{TierPlayed, TierRemoved} {
		if _, ok := RankOf(tier); ok {
			t.Errorf("expected %q to have no rank", tier)
		}
	}
}

func TestTier_IsTerminal(t *testing.T) {
	tests := []struct {
		tier Tier
		want bool
	}{
		{TierPlayed, true},
		{TierRemoved, true},
		{TierFree, false},
		{TierPendingSkips, false},
		{TierTwentyFivePlusSkip, false},
	}

	for _, tt := range tests {
		if got := tt.tier.IsTerminal(); got != tt.want {
			t.Errorf("IsTerminal(%q) = %v, want %v", tt.tier, got, tt.want)
		}
	}
}

func TestClaimableTiers_ExcludesPendingSkips(t *testing.T) {
	for _, tier := range ClaimableTiers() {
		if tier == TierPendingSkips {
			t.Fatal("expected Pending Skips to be excluded from claimable tiers")
		}
	}

	if len(ClaimableTiers()) != len(SelectableTiers())-1 {
		t.Errorf(
			"expected claimable tiers to be selectable tiers minus the holding tier, got %d vs %d",
			len(ClaimableTiers()), len(SelectableTiers()),
		)
	}
}

func TestParseTier(t *testing.T) {
	tier, err := ParseTier("10 Skip")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tier != TierTenSkip {
		t.Errorf("expected %q, got %q", TierTenSkip, tier)
	}

	if _, err := ParseTier("Songs Played"); err != nil {
		t.Errorf("expected terminal tier names to parse, got %v", err)
	}

	if _, err := ParseTier("VIP"); err != ErrInvalidTier {
		t.Errorf("expected ErrInvalidTier, got %v", err)
	}
}
