package review_queue

import (
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/luxradio/queuebot/internal/modules/review_queue/domain"
)

// Config holds the review queue module configuration.
type Config struct {
	// DatabasePath is the SQLite database file. Empty selects the
	// in-memory store, which loses state on restart.
	DatabasePath      string        `env:"DATABASE_PATH"`
	ScoreSyncInterval time.Duration `env:"SCORE_SYNC_INTERVAL" envDefault:"15s"`
	SkipPurchaseCost  int64         `env:"SKIP_PURCHASE_COST" envDefault:"1000"`

	// TierChannels maps tier names to the channel IDs their display
	// messages live in, e.g. "Free:123,5 Skip:456".
	TierChannels map[string]string `env:"TIER_CHANNELS"`

	// AnnounceChannel receives "now playing" notices for claimed
	// submissions. Empty disables them.
	AnnounceChannel snowflake.ID `env:"ANNOUNCE_CHANNEL"`
}

// tierChannelIDs validates and converts the raw tier channel mapping.
func (c *Config) tierChannelIDs() (map[domain.Tier]snowflake.ID, error) {
	channels := make(map[domain.Tier]snowflake.ID, len(c.TierChannels))
	for name, raw := range c.TierChannels {
		tier, err := domain.ParseTier(name)
		if err != nil {
			return nil, fmt.Errorf("unknown tier %q in TIER_CHANNELS", name)
		}
		id, err := snowflake.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid channel ID %q for tier %q: %w", raw, name, err)
		}
		channels[tier] = id
	}
	return channels, nil
}
