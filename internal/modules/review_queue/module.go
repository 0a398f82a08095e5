package review_queue

import (
	"context"
	"io"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"
	"github.com/luxradio/queuebot/internal/bot"
	"github.com/luxradio/queuebot/internal/metrics"
	"github.com/luxradio/queuebot/internal/modules/review_queue/application"
	"github.com/luxradio/queuebot/internal/modules/review_queue/application/usecases"
	"github.com/luxradio/queuebot/internal/modules/review_queue/domain"
	"github.com/luxradio/queuebot/internal/modules/review_queue/infrastructure"
	"github.com/luxradio/queuebot/internal/modules/review_queue/presentation/discord"
)

func init() {
	bot.Register(&ReviewQueueModule{})
}

// Compile-time interface checks.
var (
	_ bot.ConfigurableModule = (*ReviewQueueModule)(nil)
	_ bot.ComponentModule    = (*ReviewQueueModule)(nil)
)

// store is the full persistence surface the module wires up.
type store interface {
	domain.SubmissionRepository
	domain.PointsRepository
	domain.WalletRepository
}

// ReviewQueueModule provides the music submission review queue.
type ReviewQueueModule struct {
	config            *Config
	store             store
	eventBus          *infrastructure.ChannelEventBus
	scoreSync         *usecases.ScoreSyncService
	displayHandler    *application.DisplayEventHandler
	commandHandlers   *discord.CommandHandlers
	componentHandlers *discord.ComponentHandlers
}

// Name returns the module name.
func (m *ReviewQueueModule) Name() string {
	return "review_queue"
}

// Commands returns the slash commands for this module.
func (m *ReviewQueueModule) Commands() []*discordgo.ApplicationCommand {
	return discord.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *ReviewQueueModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"submit":        m.commandHandlers.HandleSubmit,
		"mysubmissions": m.commandHandlers.HandleMySubmissions,
		"queue":         m.commandHandlers.HandleQueue,
		"coins":         m.commandHandlers.HandleCoins,
		"buy-skip":      m.commandHandlers.HandleBuySkip,
		"award-points":  m.commandHandlers.HandleAwardPoints,
		"give-coins":    m.commandHandlers.HandleGiveCoins,
		"engagement":    m.commandHandlers.HandleEngagement,
	}
}

// ComponentHandlers returns the message component handlers for this module.
func (m *ReviewQueueModule) ComponentHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"move": m.componentHandlers.HandleMove,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *ReviewQueueModule) EventHandlers() []bot.EventHandler {
	return nil
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *ReviewQueueModule) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init initializes the module.
func (m *ReviewQueueModule) Init(deps bot.ModuleDependencies) error {
	if m.config == nil {
		m.config = &Config{}
	}

	if m.config.DatabasePath != "" {
		st, err := infrastructure.OpenSQLiteStore(m.config.DatabasePath)
		if err != nil {
			return err
		}
		m.store = st
	} else {
		slog.Warn("review_queue module initialized without DATABASE_PATH, submissions are not persisted")
		m.store = infrastructure.NewMemoryStore()
	}

	m.eventBus = infrastructure.NewChannelEventBus(infrastructure.DefaultEventBufferSize)

	// Create services
	submissions := usecases.NewSubmissionService(m.store, m.eventBus)
	claims := usecases.NewClaimService(m.store, m.eventBus)
	transitions := usecases.NewTransitionService(
		m.store,
		m.store,
		m.eventBus,
		nil,
		m.config.SkipPurchaseCost,
	)
	wallet := usecases.NewWalletService(m.store)
	points := usecases.NewPointsService(m.store)

	m.scoreSync = usecases.NewScoreSyncService(m.store, m.store, m.config.ScoreSyncInterval)

	// Wire displays when a session and channel mapping are available
	if deps.Session != nil && len(m.config.TierChannels) > 0 {
		tierChannels, err := m.config.tierChannelIDs()
		if err != nil {
			return err
		}

		display := infrastructure.NewDiscordDisplay(
			deps.Session,
			tierChannels,
			m.config.AnnounceChannel,
		)
		m.displayHandler = application.NewDisplayEventHandler(m.store, m.eventBus, display)
		m.displayHandler.Start()
	} else {
		slog.Warn("review_queue module initialized without tier displays")
	}

	m.registerMetricsHandlers()

	m.scoreSync.Start()

	// Create presentation handlers
	m.commandHandlers = discord.NewCommandHandlers(submissions, claims, transitions, wallet, points)
	m.componentHandlers = discord.NewComponentHandlers(transitions)

	slog.Info("review_queue module initialized")

	return nil
}

// registerMetricsHandlers subscribes metric updates to queue change events.
func (m *ReviewQueueModule) registerMetricsHandlers() {
	m.eventBus.OnSubmissionCreated(func(ctx context.Context, e domain.SubmissionCreatedEvent) {
		metrics.RecordSubmissionCreated()
		m.updateQueueDepth(ctx, e.Submission.Tier)
	})
	m.eventBus.OnSubmissionServed(func(_ context.Context, e domain.SubmissionServedEvent) {
		metrics.RecordClaimServed(string(e.Submission.Tier))
	})
	m.eventBus.OnTierChanged(func(ctx context.Context, e domain.TierChangedEvent) {
		m.updateQueueDepth(ctx, e.From)
		m.updateQueueDepth(ctx, e.To)
	})
}

// updateQueueDepth refreshes the depth gauge for a single tier.
func (m *ReviewQueueModule) updateQueueDepth(ctx context.Context, tier domain.Tier) {
	if tier.IsTerminal() {
		return
	}
	_, total, err := m.store.ListByTier(ctx, tier, 1, 0)
	if err != nil {
		slog.Warn("failed to update queue depth gauge", "tier", tier, "error", err)
		return
	}
	metrics.UpdateQueueDepth(string(tier), total)
}

// Shutdown cleans up module resources.
func (m *ReviewQueueModule) Shutdown() error {
	if m.scoreSync != nil {
		m.scoreSync.Stop()
	}

	if m.eventBus != nil {
		m.eventBus.Close()
	}

	if closer, ok := m.store.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}
