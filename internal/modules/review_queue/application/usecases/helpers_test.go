package usecases

import (
	"context"
	"sync"
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/luxradio/queuebot/internal/modules/review_queue/domain"
	"github.com/luxradio/queuebot/internal/modules/review_queue/infrastructure"
)

// mockPublisher records published events for assertions.
type mockPublisher struct {
	mu          sync.Mutex
	created     []domain.SubmissionCreatedEvent
	tierChanged []domain.TierChangedEvent
	served      []domain.SubmissionServedEvent
}

func (p *mockPublisher) PublishSubmissionCreated(event domain.SubmissionCreatedEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, event)
}

func (p *mockPublisher) PublishTierChanged(event domain.TierChangedEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tierChanged = append(p.tierChanged, event)
}

func (p *mockPublisher) PublishSubmissionServed(event domain.SubmissionServedEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.served = append(p.served, event)
}

func (p *mockPublisher) tierChangedEvents() []domain.TierChangedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.TierChangedEvent(nil), p.tierChanged...)
}

// mustCreate stores a submission directly, bypassing the service layer.
func mustCreate(
	t *testing.T,
	store *infrastructure.MemoryStore,
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
