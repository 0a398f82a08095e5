package infrastructure

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
	"github.com/luxradio/queuebot/internal/modules/review_queue/domain"
)

// Compile-time interface checks.
var (
	_ domain.SubmissionRepository = (*MemoryStore)(nil)
	_ domain.PointsRepository     = (*MemoryStore)(nil)
	_ domain.WalletRepository     = (*MemoryStore)(nil)
)

// MemoryStore is an in-memory implementation of the queue repositories.
// A single mutex serializes every mutation, which gives it the same
// atomicity guarantees as the SQLite store's transactions. It backs the
// test suite and the degraded init path when no database is configured.
type MemoryStore struct {
	mu sync.Mutex

	nextSeq      int64
	submissions  map[domain.PublicID]*domain.Submission
	userPoints   map[snowflake.ID]int64
	handlePoints map[string]int64
	balances     map[snowflake.ID]int64
	watchSeconds map[snowflake.ID]int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextSeq:      1,
		submissions:  make(map[domain.PublicID]*domain.Submission),
		userPoints:   make(map[snowflake.ID]int64),
		handlePoints: make(map[string]int64),
		balances:     make(map[snowflake.ID]int64),
		watchSeconds: make(map[snowflake.ID]int64),
	}
}

// newPublicID generates an 8-character token from a v4 UUID.
func newPublicID() domain.PublicID {
	return domain.PublicID(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Create assigns a sequence number and public ID and stores the submission.
func (m *MemoryStore) Create(_ context.Context, sub *domain.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := newPublicID()
	for _, taken := m.submissions[id]; taken; _, taken = m.submissions[id] {
		id = newPublicID()
	}

	sub.Seq = m.nextSeq
	m.nextSeq++
	sub.PublicID = id
	m.submissions[id] = sub.Clone()
	return nil
}

// GetByPublicID returns a copy of the submission.
func (m *MemoryStore) GetByPublicID(
	_ context.Context,
	id domain.PublicID,
) (*domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub, ok := m.submissions[id]
	if !ok {
		return nil, domain.ErrSubmissionNotFound
	}
	return sub.Clone(), nil
}

// SetTier reassigns the submission's tier and returns the previous one.
func (m *MemoryStore) SetTier(
	_ context.Context,
	id domain.PublicID,
	tier domain.Tier,
) (domain.Tier, error) {
	if !tier.IsValid() {
		return "", domain.ErrInvalidTier
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sub, ok := m.submissions[id]
	if !ok {
		return "", domain.ErrSubmissionNotFound
	}
	// Retraction is always allowed, but retracting twice is not.
	if sub.Tier.IsTerminal() && !(tier == domain.TierRemoved && sub.Tier != domain.TierRemoved) {
		return "", domain.ErrAlreadyTerminal
	}

	previous := sub.Tier
	sub.Tier = tier
	if tier == domain.TierPlayed && sub.PlayedAt == nil {
		now := time.Now().UTC()
		sub.PlayedAt = &now
	}
	return previous, nil
}

// SetScore writes a recomputed score, skipping terminal submissions.
func (m *MemoryStore) SetScore(_ context.Context, seq int64, score float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range m.submissions {
		if sub.Seq == seq {
			if sub.Tier.IsTerminal() {
				return nil
			}
			sub.Score = score
			return nil
		}
	}
	return domain.ErrSubmissionNotFound
}

// tierOrder sorts submissions into the tier's serving order.
func tierOrder(tier domain.Tier, subs []*domain.Submission) {
	sort.Slice(subs, func(i, j int) bool {
		if tier == domain.TierFree && subs[i].Score != subs[j].Score {
			return subs[i].Score > subs[j].Score
		}
		return subs[i].Seq < subs[j].Seq
	})
}

// ListByTier returns one page of the tier in serving order plus the total.
func (m *MemoryStore) ListByTier(
	_ context.Context,
	tier domain.Tier,
	limit, offset int,
) ([]*domain.Submission, int, error) {
	if !tier.IsValid() {
		return nil, 0, domain.ErrInvalidTier
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var subs []*domain.Submission
	for _, sub := range m.submissions {
		if sub.Tier == tier {
			subs = append(subs, sub.Clone())
		}
	}
	tierOrder(tier, subs)

	total := len(subs)
	if offset >= total {
		return nil, total, nil
	}
	subs = subs[offset:]
	if limit > 0 && len(subs) > limit {
		subs = subs[:limit]
	}
	return subs, total, nil
}

// ActiveByOwner returns the owner's newest non-terminal submission.
func (m *MemoryStore) ActiveByOwner(
	_ context.Context,
	owner snowflake.ID,
) (*domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var newest *domain.Submission
	for _, sub := range m.submissions {
		if sub.OwnerID != owner || sub.Tier.IsTerminal() || sub.IsPlayed() {
			continue
		}
		if newest == nil || sub.Seq > newest.Seq {
			newest = sub
		}
	}
	if newest == nil {
		return nil, domain.ErrNoEligibleSubmission
	}
	return newest.Clone(), nil
}

// PromoteActive promotes the owner's newest active submission to target
// when target outranks its current tier, all in one critical section.
func (m *MemoryStore) PromoteActive(
	_ context.Context,
	owner snowflake.ID,
	target domain.Tier,
) (*domain.Submission, error) {
	targetRank, ok := domain.RankOf(target)
	if !ok {
		return nil, domain.ErrInvalidTier
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var newest *domain.Submission
	for _, sub := range m.submissions {
		if sub.OwnerID != owner || sub.Tier.IsTerminal() || sub.IsPlayed() {
			continue
		}
		if newest == nil || sub.Seq > newest.Seq {
			newest = sub
		}
	}
	if newest == nil {
		return nil, domain.ErrNoEligibleSubmission
	}

	currentRank, ok := domain.RankOf(newest.Tier)
	if ok && targetRank >= currentRank {
		// Already at or above the target.
		return nil, domain.ErrNoEligibleSubmission
	}

	snapshot := newest.Clone()
	newest.Tier = target
	return snapshot, nil
}

// ClaimHead claims the head of the tier, resetting Free-tier score
// sources in the same critical section.
func (m *MemoryStore) ClaimHead(
	_ context.Context,
	tier domain.Tier,
) (*domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var candidates []*domain.Submission
	for _, sub := range m.submissions {
		if sub.Tier == tier && !sub.IsPlayed() {
			candidates = append(candidates, sub)
		}
	}
	if len(candidates) == 0 {
		return nil, domain.ErrNoCandidate
	}
	tierOrder(tier, candidates)

	head := candidates[0]
	snapshot := head.Clone()

	now := time.Now().UTC()
	head.Tier = domain.TierPlayed
	head.PlayedAt = &now

	if tier == domain.TierFree {
		m.userPoints[head.OwnerID] = 0
		if head.TikTokHandle != "" {
			m.handlePoints[head.TikTokHandle] = 0
		}
	}
	return snapshot, nil
}

// --- PointsRepository ---

func (m *MemoryStore) UserPoints(_ context.Context, owner snowflake.ID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userPoints[owner], nil
}

func (m *MemoryStore) HandlePoints(_ context.Context, handle string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handlePoints[handle], nil
}

func (m *MemoryStore) AddUserPoints(
	_ context.Context,
	owner snowflake.ID,
	points int64,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userPoints[owner] += points
	return nil
}

func (m *MemoryStore) AddHandlePoints(_ context.Context, handle string, points int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlePoints[handle] += points
	return nil
}

// --- WalletRepository ---

func (m *MemoryStore) Balance(_ context.Context, owner snowflake.ID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[owner], nil
}

func (m *MemoryStore) Credit(_ context.Context, owner snowflake.ID, coins int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[owner] += coins
	return nil
}

func (m *MemoryStore) TopBalances(
	_ context.Context,
	limit int,
) ([]domain.WalletEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := make([]domain.WalletEntry, 0, len(m.balances))
	for owner, balance := range m.balances {
		entries = append(entries, domain.WalletEntry{OwnerID: owner, Balance: balance})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Balance != entries[j].Balance {
			return entries[i].Balance > entries[j].Balance
		}
		return entries[i].OwnerID < entries[j].OwnerID
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

const secondsPerCoin = 1800 // one coin per 30 minutes watched

func (m *MemoryStore) AddWatchTime(
	_ context.Context,
	owner snowflake.ID,
	seconds int64,
) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := m.watchSeconds[owner] + seconds
	coins := total / secondsPerCoin
	m.watchSeconds[owner] = total % secondsPerCoin
	if coins > 0 {
		m.balances[owner] += coins
	}
	return coins, nil
}

// purchasableTiers are the tiers a skip purchase may move a submission
// out of.
var purchasableTiers = map[domain.Tier]bool{
	domain.TierFree:         true,
	domain.TierPendingSkips: true,
	domain.TierFiveSkip:     true,
}

// PurchaseSkip debits the cost and promotes the owner's newest
// purchasable submission, all-or-nothing.
func (m *MemoryStore) PurchaseSkip(
	_ context.Context,
	owner snowflake.ID,
	target domain.Tier,
	cost int64,
) (*domain.Submission, error) {
	if !target.IsValid() || target.IsTerminal() {
		return nil, domain.ErrInvalidTier
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.balances[owner] < cost {
		return nil, domain.ErrInsufficientBalance
	}

	var newest *domain.Submission
	for _, sub := range m.submissions {
		if sub.OwnerID != owner || sub.IsPlayed() || !purchasableTiers[sub.Tier] {
			continue
		}
		if newest == nil || sub.Seq > newest.Seq {
			newest = sub
		}
	}
	if newest == nil {
		return nil, domain.ErrNoEligibleSubmission
	}

	snapshot := newest.Clone()
	m.balances[owner] -= cost
	newest.Tier = target
	return snapshot, nil
}
