package domain

// Tier is a named priority bucket that submissions belong to.
type Tier string

const (
	// TierTwentyFivePlusSkip is the highest-priority paid tier.
	TierTwentyFivePlusSkip Tier = "25+ Skip"
	TierTwentySkip         Tier = "20 Skip"
	TierFifteenSkip        Tier = "15 Skip"
	TierTenSkip            Tier = "10 Skip"
	TierFiveSkip           Tier = "5 Skip"
	// TierFree is the default tier for new submissions. Within it,
	// submissions are ordered by score rather than arrival.
	TierFree Tier = "Free"
	// TierPendingSkips holds submissions awaiting manual skip placement.
	// It is listed and movable but never claimed directly.
	TierPendingSkips Tier = "Pending Skips"
	// TierPlayed is the terminal tier for served submissions.
	TierPlayed Tier = "Songs Played"
	// TierRemoved is the terminal tier for retracted submissions.
	// Unlike TierPlayed, it is excluded from all displays.
	TierRemoved Tier = "Removed"
)

// tierRanks assigns a total order to the non-terminal tiers.
// Lower rank is served first. Terminal tiers carry no rank.
var tierRanks = map[Tier]int{
	TierTwentyFivePlusSkip: 1,
	TierTwentySkip:         2,
	TierFifteenSkip:        3,
	TierTenSkip:            4,
	TierFiveSkip:           5,
	TierFree:               6,
	TierPendingSkips:       7,
}

// RankOf returns the rank of the given tier. The second return value is
// false for terminal tiers, which cannot be selected.
func RankOf(t Tier) (int, bool) {
	rank, ok := tierRanks[t]
	return rank, ok
}

// IsTerminal reports whether the tier is one a submission can never
// leave through normal selection or promotion.
func (t Tier) IsTerminal() bool {
	return t == TierPlayed || t == TierRemoved
}

// IsValid reports whether the tier name is part of the tier table.
func (t Tier) IsValid() bool {
	if t.IsTerminal() {
		return true
	}
	_, ok := tierRanks[t]
	return ok
}

// SelectableTiers returns all non-terminal tiers in ascending rank order.
func SelectableTiers() []Tier {
	return []Tier{
		TierTwentyFivePlusSkip,
		TierTwentySkip,
		TierFifteenSkip,
		TierTenSkip,
		TierFiveSkip,
		TierFree,
		TierPendingSkips,
	}
}

// ClaimableTiers returns the tiers the queue selector iterates when
// claiming the next submission, in ascending rank order. TierPendingSkips
// is a holding tier and is excluded.
func ClaimableTiers() []Tier {
	return []Tier{
		TierTwentyFivePlusSkip,
		TierTwentySkip,
		TierFifteenSkip,
		TierTenSkip,
		TierFiveSkip,
		TierFree,
	}
}

// ParseTier converts a tier name into a Tier.
// Returns ErrInvalidTier for names outside the tier table.
func ParseTier(name string) (Tier, error) {
	t := Tier(name)
	if !t.IsValid() {
		return "", ErrInvalidTier
	}
	return t, nil
}
