package usecases

import (
	"context"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/luxradio/queuebot/internal/modules/review_queue/domain"
)

// PointsService records externally accrued engagement points. The
// balances are picked up by the scoring aggregator on its next pass;
// awarding points never touches submissions directly.
type PointsService struct {
	points domain.PointsRepository
}

// NewPointsService creates a new PointsService.
func NewPointsService(points domain.PointsRepository) *PointsService {
	return &PointsService{points: points}
}

// AwardUserPoints adds points to a user's balance.
func (p *PointsService) AwardUserPoints(
	ctx context.Context,
	owner snowflake.ID,
	points int64,
) error {
	if err := p.points.AddUserPoints(ctx, owner, points); err != nil {
		return err
	}
	slog.Info("awarded user points", "owner_id", owner, "points", points)
	return nil
}

// AwardHandlePoints adds points to a linked handle's balance.
func (p *PointsService) AwardHandlePoints(
	ctx context.Context,
	handle string,
	points int64,
) error {
	if err := p.points.AddHandlePoints(ctx, handle, points); err != nil {
		return err
	}
	slog.Info("awarded handle points", "handle", handle, "points", points)
	return nil
}

// UserPoints returns a user's current point balance.
func (p *PointsService) UserPoints(ctx context.Context, owner snowflake.ID) (int64, error) {
	return p.points.UserPoints(ctx, owner)
}
