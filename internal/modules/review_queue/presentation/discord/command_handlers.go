package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/luxradio/queuebot/internal/bot"
	"github.com/luxradio/queuebot/internal/metrics"
	"github.com/luxradio/queuebot/internal/modules/review_queue/application/usecases"
	"github.com/luxradio/queuebot/internal/modules/review_queue/domain"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
	colorInfo    = 0x3498DB
)

// CommandHandlers holds all the command handlers.
type CommandHandlers struct {
	submissions *usecases.SubmissionService
	claims      *usecases.ClaimService
	transitions *usecases.TransitionService
	wallet      *usecases.WalletService
	points      *usecases.PointsService
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(
	submissions *usecases.SubmissionService,
	claims *usecases.ClaimService,
	transitions *usecases.TransitionService,
	wallet *usecases.WalletService,
	points *usecases.PointsService,
) *CommandHandlers {
	return &CommandHandlers{
		submissions: submissions,
		claims:      claims,
		transitions: transitions,
		wallet:      wallet,
		points:      points,
	}
}

// HandleSubmit handles the /submit command.
func (h *CommandHandlers) HandleSubmit(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ownerID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return respondError(r, "Invalid user")
	}

	input := usecases.CreateSubmissionInput{
		OwnerID:   ownerID,
		OwnerName: getDisplayName(i.Member),
	}

	options := i.ApplicationCommandData().Options
	for _, opt := range options {
		switch opt.Name {
		case "link":
			input.LinkOrFile = opt.StringValue()
		case "artist":
			input.Artist = opt.StringValue()
		case "title":
			input.Title = opt.StringValue()
		case "note":
			input.Note = opt.StringValue()
		case "tiktok_handle":
			input.TikTokHandle = normalizeHandle(opt.StringValue())
		}
	}

	output, err := h.submissions.Create(ctx, input)
	if err != nil {
		return respondError(r, err.Error())
	}

	sub := output.Submission
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: fmt.Sprintf(
						"Submitted **%s - %s** to the %s queue.",
						sub.Artist, sub.Title, sub.Tier,
					),
					Color: colorSuccess,
					Footer: &discordgo.MessageEmbedFooter{
						Text: fmt.Sprintf("ID: %s", sub.PublicID),
					},
				},
			},
		},
	})
}

// HandleMySubmissions handles the /mysubmissions command.
func (h *CommandHandlers) HandleMySubmissions(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ownerID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return respondError(r, "Invalid user")
	}

	sub, err := h.submissions.ActiveFor(ctx, ownerID)
	if errors.Is(err, domain.ErrNoEligibleSubmission) {
		return r.Respond(&discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds: []*discordgo.MessageEmbed{
					{
						Description: "You have no active submission. Use /submit to add one.",
						Color:       colorInfo,
					},
				},
			},
		})
	}
	if err != nil {
		return respondError(r, err.Error())
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{submissionEmbed(sub)},
		},
	})
}

// HandleQueue handles the /queue command.
func (h *CommandHandlers) HandleQueue(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return respondError(r, "Invalid subcommand")
	}

	subCmd := options[0]
	switch subCmd.Name {
	case "view":
		return h.handleQueueView(s, i, r, subCmd.Options)
	case "info":
		return h.handleQueueInfo(s, i, r, subCmd.Options)
	case "next":
		return h.handleQueueNext(s, i, r)
	case "move":
		return h.handleQueueMove(s, i, r, subCmd.Options)
	case "remove":
		return h.handleQueueRemove(s, i, r, subCmd.Options)
	default:
		return respondError(r, "Unknown subcommand")
	}
}

func (h *CommandHandlers) handleQueueView(
	_ *discordgo.Session,
	_ *discordgo.InteractionCreate,
	r bot.Responder,
	options []*discordgo.ApplicationCommandInteractionDataOption,
) error {
	ctx := context.Background()

	var tierStr string
	var page int
	for _, opt := range options {
		switch opt.Name {
		case "tier":
			tierStr = opt.StringValue()
		case "page":
			page = int(opt.IntValue())
		}
	}

	tier, err := domain.ParseTier(tierStr)
	if err != nil {
		return respondError(r, "Unknown tier")
	}

	output, err := h.submissions.List(ctx, usecases.ListTierInput{
		Tier: tier,
		Page: page,
	})
	if err != nil {
		return respondError(r, err.Error())
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s Queue", tier),
		Color: colorInfo,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf(
				"Page %d/%d • %d submission(s)",
				output.CurrentPage, output.TotalPages, output.TotalCount,
			),
		},
	}

	if len(output.Submissions) == 0 {
		embed.Description = "The queue is empty."
	} else {
		var sb strings.Builder
		start := (output.CurrentPage - 1) * usecases.DefaultPageSize
		for idx, sub := range output.Submissions {
			fmt.Fprintf(
				&sb,
				"%d\\. **%s - %s** by %s",
				start+idx+1, sub.Artist, sub.Title, sub.OwnerName,
			)
			if tier == domain.TierFree {
				fmt.Fprintf(&sb, " (%.0f pts)", sub.Score)
			}
			fmt.Fprintf(&sb, " `%s`\n", sub.PublicID)
		}
		embed.Description = sb.String()
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

func (h *CommandHandlers) handleQueueInfo(
	_ *discordgo.Session,
	_ *discordgo.InteractionCreate,
	r bot.Responder,
	options []*discordgo.ApplicationCommandInteractionDataOption,
) error {
	ctx := context.Background()

	var id string
	for _, opt := range options {
		if opt.Name == "id" {
			id = opt.StringValue()
		}
	}

	sub, err := h.submissions.Get(ctx, domain.PublicID(id))
	if errors.Is(err, domain.ErrSubmissionNotFound) {
		return respondError(r, "Submission not found")
	}
	if err != nil {
		return respondError(r, err.Error())
	}

	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{submissionEmbed(sub)},
	}
	if !sub.Tier.IsTerminal() {
		data.Components = moveButtons(sub.PublicID)
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

func (h *CommandHandlers) handleQueueNext(
	_ *discordgo.Session,
	_ *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	output, err := h.claims.ClaimNext(ctx)
	if err != nil {
		return respondError(r, err.Error())
	}

	if output.Submission == nil {
		return r.Respond(&discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds: []*discordgo.MessageEmbed{
					{
						Description: "All queues are empty.",
						Color:       colorInfo,
					},
				},
			},
		})
	}

	embed := submissionEmbed(output.Submission)
	embed.Author = &discordgo.MessageEmbedAuthor{Name: "Up Next"}
	embed.Color = colorSuccess

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

func (h *CommandHandlers) handleQueueMove(
	_ *discordgo.Session,
	_ *discordgo.InteractionCreate,
	r bot.Responder,
	options []*discordgo.ApplicationCommandInteractionDataOption,
) error {
	ctx := context.Background()

	var id, tierStr string
	for _, opt := range options {
		switch opt.Name {
		case "id":
			id = opt.StringValue()
		case "tier":
			tierStr = opt.StringValue()
		}
	}

	tier, err := domain.ParseTier(tierStr)
	if err != nil {
		return respondError(r, "Unknown tier")
	}

	output, err := h.transitions.Move(ctx, usecases.MoveInput{
		PublicID: domain.PublicID(id),
		Target:   tier,
	})
	if err != nil {
		return respondError(r, moveErrorMessage(err))
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: fmt.Sprintf(
						"Moved `%s` from %s to %s.",
						id, output.Previous, tier,
					),
					Color: colorSuccess,
				},
			},
		},
	})
}

func (h *CommandHandlers) handleQueueRemove(
	_ *discordgo.Session,
	_ *discordgo.InteractionCreate,
	r bot.Responder,
	options []*discordgo.ApplicationCommandInteractionDataOption,
) error {
	ctx := context.Background()

	var id string
	for _, opt := range options {
		if opt.Name == "id" {
			id = opt.StringValue()
		}
	}

	output, err := h.transitions.Remove(ctx, domain.PublicID(id))
	if err != nil {
		return respondError(r, moveErrorMessage(err))
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: fmt.Sprintf(
						"Removed `%s` from the %s queue.",
						id, output.Previous,
					),
					Color: colorSuccess,
				},
			},
		},
	})
}

// HandleCoins handles the /coins command.
func (h *CommandHandlers) HandleCoins(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return respondError(r, "Invalid subcommand")
	}

	subCmd := options[0]
	switch subCmd.Name {
	case "balance":
		return h.handleCoinsBalance(s, i, r, subCmd.Options)
	case "leaderboard":
		return h.handleCoinsLeaderboard(s, i, r)
	default:
		return respondError(r, "Unknown subcommand")
	}
}

func (h *CommandHandlers) handleCoinsBalance(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
	options []*discordgo.ApplicationCommandInteractionDataOption,
) error {
	ctx := context.Background()

	targetID := i.Member.User.ID
	for _, opt := range options {
		if opt.Name == "user" {
			targetID = opt.UserValue(s).ID
		}
	}

	ownerID, err := snowflake.Parse(targetID)
	if err != nil {
		return respondError(r, "Invalid user")
	}

	balance, err := h.wallet.Balance(ctx, ownerID)
	if err != nil {
		return respondError(r, err.Error())
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: fmt.Sprintf("<@%d> has **%d** Luxury Coins.", ownerID, balance),
					Color:       colorInfo,
				},
			},
		},
	})
}

func (h *CommandHandlers) handleCoinsLeaderboard(
	_ *discordgo.Session,
	_ *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	entries, err := h.wallet.Leaderboard(ctx, 0)
	if err != nil {
		return respondError(r, err.Error())
	}

	embed := &discordgo.MessageEmbed{
		Title: "Luxury Coin Leaderboard",
		Color: colorInfo,
	}

	if len(entries) == 0 {
		embed.Description = "Nobody has any coins yet."
	} else {
		var sb strings.Builder
		for idx, entry := range entries {
			fmt.Fprintf(&sb, "%d\\. <@%d> — **%d**\n", idx+1, entry.OwnerID, entry.Balance)
		}
		embed.Description = sb.String()
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

// HandleBuySkip handles the /buy-skip command.
func (h *CommandHandlers) HandleBuySkip(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ownerID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return respondError(r, "Invalid user")
	}

	output, err := h.transitions.PurchaseSkip(ctx, usecases.PurchaseSkipInput{
		OwnerID: ownerID,
	})
	if errors.Is(err, domain.ErrInsufficientBalance) {
		return respondError(r, "You do not have enough coins for a skip.")
	}
	if errors.Is(err, domain.ErrNoEligibleSubmission) {
		return respondError(r, "You have no submission that can be upgraded.")
	}
	if err != nil {
		return respondError(r, err.Error())
	}

	metrics.RecordSkipPurchase()

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: fmt.Sprintf(
						"Spent **%d** coins: `%s` moved from %s to %s.",
						output.Cost,
						output.Submission.PublicID,
						output.Submission.Tier,
						output.Target,
					),
					Color: colorSuccess,
				},
			},
		},
	})
}

// HandleAwardPoints handles the /award-points command.
func (h *CommandHandlers) HandleAwardPoints(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return respondError(r, "Invalid subcommand")
	}

	subCmd := options[0]
	switch subCmd.Name {
	case "user":
		var targetID string
		var points int64
		for _, opt := range subCmd.Options {
			switch opt.Name {
			case "user":
				targetID = opt.UserValue(s).ID
			case "points":
				points = opt.IntValue()
			}
		}

		ownerID, err := snowflake.Parse(targetID)
		if err != nil {
			return respondError(r, "Invalid user")
		}

		if err := h.points.AwardUserPoints(ctx, ownerID, points); err != nil {
			return respondError(r, err.Error())
		}

		return r.Respond(&discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds: []*discordgo.MessageEmbed{
					{
						Description: fmt.Sprintf("Awarded **%d** points to <@%d>.", points, ownerID),
						Color:       colorSuccess,
					},
				},
			},
		})

	case "handle":
		var handle string
		var points int64
		for _, opt := range subCmd.Options {
			switch opt.Name {
			case "handle":
				handle = normalizeHandle(opt.StringValue())
			case "points":
				points = opt.IntValue()
			}
		}

		if handle == "" {
			return respondError(r, "Invalid handle")
		}

		if err := h.points.AwardHandlePoints(ctx, handle, points); err != nil {
			return respondError(r, err.Error())
		}

		return r.Respond(&discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds: []*discordgo.MessageEmbed{
					{
						Description: fmt.Sprintf("Awarded **%d** points to @%s.", points, handle),
						Color:       colorSuccess,
					},
				},
			},
		})

	default:
		return respondError(r, "Unknown subcommand")
	}
}

// HandleEngagement handles the /engagement command. It stands in for a
// streaming-platform listener: gifts feed both the wallet and the tier
// promotion thresholds, watch time feeds the wallet only.
func (h *CommandHandlers) HandleEngagement(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return respondError(r, "Invalid subcommand")
	}

	subCmd := options[0]
	switch subCmd.Name {
	case "gift":
		var targetID string
		var value, total int64
		for _, opt := range subCmd.Options {
			switch opt.Name {
			case "user":
				targetID = opt.UserValue(s).ID
			case "value":
				value = opt.IntValue()
			case "total":
				total = opt.IntValue()
			}
		}

		ownerID, err := snowflake.Parse(targetID)
		if err != nil {
			return respondError(r, "Invalid user")
		}

		coins, err := h.wallet.AwardGiftCoins(ctx, ownerID, value)
		if err != nil {
			return respondError(r, err.Error())
		}
		if coins > 0 {
			metrics.RecordCoinsAwarded(coins)
		}

		promo, err := h.transitions.ApplyGift(ctx, usecases.ApplyGiftInput{
			OwnerID:         ownerID,
			CumulativeCoins: total,
		})
		if err != nil {
			return respondError(r, err.Error())
		}

		description := fmt.Sprintf(
			"Recorded a %d coin gift from <@%d> (+%d Luxury Coins).",
			value, ownerID, coins,
		)
		if promo.Promoted {
			metrics.RecordGiftPromotion()
			description += fmt.Sprintf(
				"\nSubmission `%s` promoted from %s to %s.",
				promo.PublicID, promo.From, promo.To,
			)
		}

		return r.Respond(&discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds: []*discordgo.MessageEmbed{
					{
						Description: description,
						Color:       colorSuccess,
					},
				},
			},
		})

	case "watch":
		var targetID string
		var seconds int64
		for _, opt := range subCmd.Options {
			switch opt.Name {
			case "user":
				targetID = opt.UserValue(s).ID
			case "seconds":
				seconds = opt.IntValue()
			}
		}

		ownerID, err := snowflake.Parse(targetID)
		if err != nil {
			return respondError(r, "Invalid user")
		}

		coins, err := h.wallet.AwardWatchTime(ctx, ownerID, seconds)
		if err != nil {
			return respondError(r, err.Error())
		}
		if coins > 0 {
			metrics.RecordCoinsAwarded(coins)
		}

		return r.Respond(&discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds: []*discordgo.MessageEmbed{
					{
						Description: fmt.Sprintf(
							"Recorded %d seconds of watch time for <@%d> (+%d Luxury Coins).",
							seconds, ownerID, coins,
						),
						Color: colorSuccess,
					},
				},
			},
		})

	default:
		return respondError(r, "Unknown subcommand")
	}
}

// HandleGiveCoins handles the /give-coins command.
func (h *CommandHandlers) HandleGiveCoins(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	var targetID string
	var amount int64
	options := i.ApplicationCommandData().Options
	for _, opt := range options {
		switch opt.Name {
		case "user":
			targetID = opt.UserValue(s).ID
		case "amount":
			amount = opt.IntValue()
		}
	}

	ownerID, err := snowflake.Parse(targetID)
	if err != nil {
		return respondError(r, "Invalid user")
	}

	if err := h.wallet.Grant(ctx, ownerID, amount); err != nil {
		return respondError(r, err.Error())
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: fmt.Sprintf("Granted **%d** coins to <@%d>.", amount, ownerID),
					Color:       colorSuccess,
				},
			},
		},
	})
}

// Response helpers.

func respondError(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Error",
					Description: message,
					Color:       colorError,
				},
			},
		},
	})
}

// moveErrorMessage maps tier transition errors to user-facing text.
func moveErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrSubmissionNotFound):
		return "Submission not found"
	case errors.Is(err, domain.ErrAlreadyTerminal):
		return "That submission has already been played or removed."
	case errors.Is(err, domain.ErrInvalidTier):
		return "Unknown tier"
	default:
		return err.Error()
	}
}

// submissionEmbed renders a single submission.
func submissionEmbed(sub *usecases.Submission) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s - %s", sub.Artist, sub.Title),
		Color: colorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Submitted by",
				Value:  sub.OwnerName,
				Inline: true,
			},
			{
				Name:   "Tier",
				Value:  string(sub.Tier),
				Inline: true,
			},
		},
		Timestamp: sub.SubmittedAt.UTC().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("ID: %s", sub.PublicID),
		},
	}

	if sub.Tier == domain.TierFree {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Score",
			Value:  fmt.Sprintf("%.0f", sub.Score),
			Inline: true,
		})
	}
	if sub.LinkOrFile != "" {
		embed.URL = sub.LinkOrFile
	}
	if sub.Note != "" {
		embed.Description = sub.Note
	}
	if sub.TikTokHandle != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "TikTok",
			Value:  "@" + sub.TikTokHandle,
			Inline: true,
		})
	}

	return embed
}

// normalizeHandle strips a leading '@' and whitespace from a TikTok handle.
func normalizeHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}

// getDisplayName returns the effective display name for a guild member.
// Priority: guild nickname > global display name > username.
func getDisplayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}
