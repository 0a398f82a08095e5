package infrastructure

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/luxradio/queuebot/internal/modules/review_queue/application/ports"
	"github.com/luxradio/queuebot/internal/modules/review_queue/domain"
)

// Embed colors.
const (
	colorGold  = 0xF1C40F
	colorGreen = 0x2ECC71
)

const maxDisplayEntries = 25

// DiscordDisplay renders tier queues as edited-in-place embeds in
// per-tier Discord channels. One message per tier is maintained; the
// first refresh creates it and later refreshes edit it.
type DiscordDisplay struct {
	session      *discordgo.Session
	tierChannels map[domain.Tier]snowflake.ID
	announceIn   snowflake.ID

	mu       sync.Mutex
	messages map[domain.Tier]string
}

// NewDiscordDisplay creates a new DiscordDisplay. Tiers missing from
// tierChannels are silently skipped on refresh.
func NewDiscordDisplay(
	session *discordgo.Session,
	tierChannels map[domain.Tier]snowflake.ID,
	announceIn snowflake.ID,
) *DiscordDisplay {
	return &DiscordDisplay{
		session:      session,
		tierChannels: tierChannels,
		announceIn:   announceIn,
		messages:     make(map[domain.Tier]string),
	}
}

// UpdateTierDisplay replaces the tier's display message with the given
// submissions.
func (d *DiscordDisplay) UpdateTierDisplay(
	_ context.Context,
	tier domain.Tier,
	subs []*domain.Submission,
) error {
	channelID, ok := d.tierChannels[tier]
	if !ok {
		return nil
	}

	embed := d.buildTierEmbed(tier, subs)

	d.mu.Lock()
	messageID := d.messages[tier]
	d.mu.Unlock()

	if messageID != "" {
		_, err := d.session.ChannelMessageEditEmbed(channelID.String(), messageID, embed)
		if err == nil {
			return nil
		}
		// The message may have been deleted out of band; fall through
		// and post a fresh one.
	}

	msg, err := d.session.ChannelMessageSendEmbed(channelID.String(), embed)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.messages[tier] = msg.ID
	d.mu.Unlock()

	return nil
}

// AnnounceServed posts the "now playing" notice for a just-claimed
// submission.
func (d *DiscordDisplay) AnnounceServed(_ context.Context, sub *domain.Submission) error {
	if d.announceIn == 0 {
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name: "Now Playing",
		},
		Title:     fmt.Sprintf("%s - %s", sub.Artist, sub.Title),
		Color:     colorGreen,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Submitted by",
				Value:  sub.OwnerName,
				Inline: true,
			},
			{
				Name:   "From tier",
				Value:  string(sub.Tier),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("ID: %s", sub.PublicID),
		},
	}
	if sub.LinkOrFile != "" {
		embed.URL = sub.LinkOrFile
	}

	_, err := d.session.ChannelMessageSendEmbed(d.announceIn.String(), embed)
	return err
}

func (d *DiscordDisplay) buildTierEmbed(
	tier domain.Tier,
	subs []*domain.Submission,
) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("%s Queue", tier),
		Color:     colorGold,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%d submission(s)", len(subs)),
		},
	}

	if len(subs) == 0 {
		embed.Description = "The queue is empty."
		return embed
	}

	var b strings.Builder
	for i, sub := range subs {
		if i == maxDisplayEntries {
			fmt.Fprintf(&b, "… and %d more", len(subs)-maxDisplayEntries)
			break
		}
		fmt.Fprintf(&b, "%d. **%s - %s** by %s", i+1, sub.Artist, sub.Title, sub.OwnerName)
		if tier == domain.TierFree {
			fmt.Fprintf(&b, " (%.0f pts)", sub.Score)
		}
		fmt.Fprintf(&b, " `%s`\n", sub.PublicID)
	}
	embed.Description = b.String()

	return embed
}

// Ensure DiscordDisplay implements ports.DisplaySender.
var _ ports.DisplaySender = (*DiscordDisplay)(nil)
