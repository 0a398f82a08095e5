package usecases

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/luxradio/queuebot/internal/modules/review_queue/domain"
)

// DefaultSyncInterval is how often Free-tier scores are reconciled.
const DefaultSyncInterval = 15 * time.Second

// ScoreSyncService is the scoring aggregator. It periodically recomputes
// every Free-tier submission's score as the sum of the owner's and the
// linked handle's point balances. Scoring is deliberately decoupled from
// point accrual: the balances change on every engagement event, so a
// reconciliation pass tolerating one interval of staleness is far
// cheaper than recomputing per event.
type ScoreSyncService struct {
	repo     domain.SubmissionRepository
	points   domain.PointsRepository
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewScoreSyncService creates a new ScoreSyncService. A non-positive
// interval selects the default.
func NewScoreSyncService(
	repo domain.SubmissionRepository,
	points domain.PointsRepository,
	interval time.Duration,
) *ScoreSyncService {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return &ScoreSyncService{
		repo:     repo,
		points:   points,
		interval: interval,
	}
}

// SyncOnce runs a single reconciliation pass. Scores never change tier
// membership, and terminal submissions are skipped entirely (their last
// score is frozen).
func (s *ScoreSyncService) SyncOnce(ctx context.Context) error {
	subs, _, err := s.repo.ListByTier(ctx, domain.TierFree, 0, 0)
	if err != nil {
		return err
	}

	for _, sub := range subs {
		if sub.IsPlayed() {
			continue
		}

		userPoints, err := s.points.UserPoints(ctx, sub.OwnerID)
		if err != nil {
			return err
		}
		score := float64(userPoints)

		if sub.TikTokHandle != "" {
			handlePoints, err := s.points.HandlePoints(ctx, sub.TikTokHandle)
			if err != nil {
				return err
			}
			score += float64(handlePoints)
		}

		if score == sub.Score {
			continue
		}
		if err := s.repo.SetScore(ctx, sub.Seq, score); err != nil {
			return err
		}
	}
	return nil
}

// Start launches the periodic reconciliation loop. Stop cancels it.
func (s *ScoreSyncService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.SyncOnce(ctx); err != nil {
					slog.Error("score sync failed", "error", err)
				}
			}
		}
	}()
}

// Stop cancels the reconciliation loop and waits for it to finish.
func (s *ScoreSyncService) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		s.wg.Wait()
	}
}
