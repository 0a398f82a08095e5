package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/luxradio/queuebot/internal/modules/review_queue/domain"
)

// tierChoices returns command option choices for every selectable tier.
func tierChoices() []*discordgo.ApplicationCommandOptionChoice {
	tiers := domain.SelectableTiers()
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(tiers)+1)
	for _, tier := range tiers {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  string(tier),
			Value: string(tier),
		})
	}
	choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
		Name:  string(domain.TierPlayed),
		Value: string(domain.TierPlayed),
	})
	return choices
}

// Commands returns all slash commands for the review queue module.
func Commands() []*discordgo.ApplicationCommand {
	manageSubmissions := int64(discordgo.PermissionManageServer)

	return []*discordgo.ApplicationCommand{
		{
			Name:        "submit",
			Description: "Submit a song for review",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "link",
					Description: "Link to the song (or file URL)",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "artist",
					Description: "Artist name (defaults to your display name)",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "title",
					Description: "Song title",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "note",
					Description: "Note for the reviewer",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "tiktok_handle",
					Description: "TikTok handle to link for engagement points",
					Required:    false,
				},
			},
		},
		{
			Name:        "mysubmissions",
			Description: "Show your active submission",
		},
		{
			Name:        "queue",
			Description: "Manage the review queue",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "view",
					Description: "Show a tier's queue",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "tier",
							Description: "Tier to show",
							Required:    true,
							Choices:     tierChoices(),
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "page",
							Description: "Page number",
							Required:    false,
							MinValue:    floatPtr(1),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "info",
					Description: "Show a single submission",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "id",
							Description: "Submission ID",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "next",
					Description: "Claim the next submission to review",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "move",
					Description: "Move a submission to another tier",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "id",
							Description: "Submission ID",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "tier",
							Description: "Target tier",
							Required:    true,
							Choices:     tierChoices(),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove a submission from the queue",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "id",
							Description: "Submission ID",
							Required:    true,
						},
					},
				},
			},
			DefaultMemberPermissions: &manageSubmissions,
		},
		{
			Name:        "coins",
			Description: "Luxury Coin balance and leaderboard",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "balance",
					Description: "Show a coin balance",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "User to look up (defaults to you)",
							Required:    false,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "leaderboard",
					Description: "Show the top coin balances",
				},
			},
		},
		{
			Name:        "buy-skip",
			Description: "Spend coins to move your submission to the 10 Skip tier",
		},
		{
			Name:        "award-points",
			Description: "Award engagement points",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "user",
					Description: "Award points to a Discord user",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "User to award points to",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "points",
							Description: "Points to add (can be negative)",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "handle",
					Description: "Award points to a TikTok handle",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "handle",
							Description: "TikTok handle to award points to",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "points",
							Description: "Points to add (can be negative)",
							Required:    true,
						},
					},
				},
			},
			DefaultMemberPermissions: &manageSubmissions,
		},
		{
			Name:        "engagement",
			Description: "Report stream engagement for a viewer",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "gift",
					Description: "Report a received gift",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "Viewer who sent the gift",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "value",
							Description: "Coin value of this gift",
							Required:    true,
							MinValue:    floatPtr(1),
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "total",
							Description: "Viewer's cumulative coin total this session",
							Required:    true,
							MinValue:    floatPtr(1),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "watch",
					Description: "Report accumulated watch time",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "Viewer to credit",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "seconds",
							Description: "Watch time in seconds",
							Required:    true,
							MinValue:    floatPtr(1),
						},
					},
				},
			},
			DefaultMemberPermissions: &manageSubmissions,
		},
		{
			Name:        "give-coins",
			Description: "Grant Luxury Coins to a user",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to grant coins to",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Coins to grant",
					Required:    true,
					MinValue:    floatPtr(1),
				},
			},
			DefaultMemberPermissions: &manageSubmissions,
		},
	}
}

func floatPtr(f float64) *float64 {
	return &f
}
