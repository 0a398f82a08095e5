package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/luxradio/queuebot/internal/bot"
	"github.com/luxradio/queuebot/internal/modules/review_queue/application/usecases"
	"github.com/luxradio/queuebot/internal/modules/review_queue/domain"
)

// moveComponentPrefix is the custom ID prefix for tier move buttons.
const moveComponentPrefix = "move"

// moveButtons builds the quick-move button rows attached to a submission
// embed. Custom IDs have the form "move:<publicID>:<tier>".
func moveButtons(id domain.PublicID) []discordgo.MessageComponent {
	skipRow := make([]discordgo.MessageComponent, 0, 5)
	for _, tier := range []domain.Tier{
		domain.TierTwentyFivePlusSkip,
		domain.TierTwentySkip,
		domain.TierFifteenSkip,
		domain.TierTenSkip,
		domain.TierFiveSkip,
	} {
		skipRow = append(skipRow, discordgo.Button{
			Label:    string(tier),
			Style:    discordgo.PrimaryButton,
			CustomID: moveCustomID(id, tier),
		})
	}

	otherRow := []discordgo.MessageComponent{
		discordgo.Button{
			Label:    string(domain.TierFree),
			Style:    discordgo.SecondaryButton,
			CustomID: moveCustomID(id, domain.TierFree),
		},
		discordgo.Button{
			Label:    string(domain.TierPendingSkips),
			Style:    discordgo.SecondaryButton,
			CustomID: moveCustomID(id, domain.TierPendingSkips),
		},
		discordgo.Button{
			Label:    "Remove",
			Style:    discordgo.DangerButton,
			CustomID: moveCustomID(id, domain.TierRemoved),
		},
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: skipRow},
		discordgo.ActionsRow{Components: otherRow},
	}
}

func moveCustomID(id domain.PublicID, tier domain.Tier) string {
	return fmt.Sprintf("%s:%s:%s", moveComponentPrefix, id, tier)
}

// ComponentHandlers holds the message component handlers.
type ComponentHandlers struct {
	transitions *usecases.TransitionService
}

// NewComponentHandlers creates new ComponentHandlers.
func NewComponentHandlers(transitions *usecases.TransitionService) *ComponentHandlers {
	return &ComponentHandlers{transitions: transitions}
}

// HandleMove handles a tier move button press.
func (h *ComponentHandlers) HandleMove(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	parts := strings.SplitN(i.MessageComponentData().CustomID, ":", 3)
	if len(parts) != 3 {
		return respondError(r, "Malformed action")
	}
	id := domain.PublicID(parts[1])

	tier, err := domain.ParseTier(parts[2])
	if err != nil {
		return respondError(r, "Unknown tier")
	}

	output, err := h.transitions.Move(ctx, usecases.MoveInput{
		PublicID: id,
		Target:   tier,
	})
	if err != nil {
		return respondError(r, moveErrorMessage(err))
	}

	description := fmt.Sprintf("Moved `%s` from %s to %s.", id, output.Previous, tier)
	if tier == domain.TierRemoved {
		description = fmt.Sprintf("Removed `%s` from the %s queue.", id, output.Previous)
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
}
