package crosschat

import (
	"context"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/utils/json/option"
	"github.com/google/uuid"
)

// confirmLink asks the target channel for permission via a button
// prompt and waits for the first press, bounded by the configured
// timeout. The timeout path reports ErrConfirmTimeout; a plain decline
// is (false, nil).
func (s *Service) confirmLink(ctx context.Context, channelID discord.ChannelID, prompt string) (bool, error) {
	nonce := uuid.NewString()

	var (
		confirmID = discord.ComponentID("crosschat/accept/" + nonce)
		declineID = discord.ComponentID("crosschat/decline/" + nonce)
	)

	msg, err := s.state.SendMessageComplex(channelID, api.SendMessageData{
		Content: prompt,
		Components: discord.ContainerComponents{
			&discord.ActionRowComponent{
				&discord.ButtonComponent{
					CustomID: confirmID,
					Label:    "Yep!",
					Style:    discord.SuccessButtonStyle(),
				},
				&discord.ButtonComponent{
					CustomID: declineID,
					Label:    "Nope!",
					Style:    discord.DangerButtonStyle(),
				},
			},
		},
	})
	if err != nil {
		return false, err
	}

	interactions := make(chan *gateway.InteractionCreateEvent, 8)
	rm := s.events.AddHandler(interactions)
	defer rm()

	ctx, cancel := context.WithTimeout(ctx, s.confirmTimeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			s.expirePrompt(channelID, msg.ID)
			return false, ErrConfirmTimeout

		case ev := <-interactions:
			button, ok := ev.Data.(*discord.ButtonInteraction)
			if !ok || ev.ChannelID != channelID {
				continue
			}

			if button.CustomID != confirmID && button.CustomID != declineID {
				continue
			}

			ack := api.InteractionResponse{
				Type: api.UpdateMessage,
				Data: &api.InteractionResponseData{
					Content:    option.NewNullableString("Response received!"),
					Components: &discord.ContainerComponents{},
				},
			}
			if err := s.state.RespondInteraction(ev.ID, ev.Token, ack); err != nil {
				s.log.With("channel_id", channelID, "error", err).
					Warn("failed to acknowledge the consent prompt")
			}

			return button.CustomID == confirmID, nil
		}
	}
}

// expirePrompt disarms a prompt nobody answered.
func (s *Service) expirePrompt(channelID discord.ChannelID, messageID discord.MessageID) {
	_, err := s.state.EditMessageComplex(channelID, messageID, api.EditMessageData{
		Content:    option.NewNullableString("Link request expired."),
		Components: &discord.ContainerComponents{},
	})
	if err != nil {
		s.log.With("channel_id", channelID, "error", err).
			Debug("failed to expire the consent prompt")
	}
}
