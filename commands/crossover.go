package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/api/cmdroute"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/nameless-bot/nameless/arikawautils/embeds"
	"github.com/nameless-bot/nameless/bot"
	"github.com/nameless-bot/nameless/crosschat"
	"github.com/nameless-bot/nameless/slices"
)

func crossover(chat *crosschat.Service) func(b *bot.Bot) (api.CreateCommandData, map[string]cmdroute.CommandHandlerFunc) {
	return func(b *bot.Bot) (api.CreateCommandData, map[string]cmdroute.CommandHandlerFunc) {
		cmd := api.CreateCommandData{
			Name:                     "crossover",
			Description:              "Cross-guild chat management",
			Type:                     discord.ChatInputCommand,
			NoDMPermission:           true,
			DefaultMemberPermissions: discord.NewPermissions(discord.PermissionManageGuild),
			Options: discord.CommandOptions{
				&discord.SubcommandOption{
					OptionName:  "code",
					Description: "Get the cross-chat room code of this channel",
				},
				&discord.SubcommandOption{
					OptionName:  "connect",
					Description: "Connect this channel to a cross-chat room",
					Options: []discord.CommandOptionValue{
						discord.NewStringOption("code", "The room code to connect to", true),
					},
				},
				&discord.SubcommandOption{
					OptionName:  "list",
					Description: "List all cross-chat rooms of this channel",
				},
				&discord.SubcommandOption{
					OptionName:  "link",
					Description: "Link this channel directly to another channel",
					Options: []discord.CommandOptionValue{
						discord.NewStringOption("guild", "The target guild's ID", true),
						discord.NewStringOption("channel", "The target channel's ID", true),
					},
				},
			},
		}

		handlers := map[string]cmdroute.CommandHandlerFunc{
			"code":    crossoverCode(b, chat),
			"connect": crossoverConnect(b, chat),
			"list":    crossoverList(b, chat),
			"link":    crossoverLink(b, chat),
		}

		return cmd, handlers
	}
}

func crossoverCode(b *bot.Bot, chat *crosschat.Service) cmdroute.CommandHandlerFunc {
	return func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		code, err := chat.Publish(ctx, data.Event.GuildID, data.Event.ChannelID)
		if err != nil {
			return crossoverError(b, err)
		}

		return respondText(fmt.Sprintf("Your cross-chat room code is: `%v`", code))
	}
}

func crossoverConnect(b *bot.Bot, chat *crosschat.Service) cmdroute.CommandHandlerFunc {
	return func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		code := data.Options.Find("code").String()

		link, err := chat.Connect(ctx, data.Event.GuildID, data.Event.ChannelID, code)
		if err != nil {
			return crossoverError(b, err)
		}

		notifyCounterpart(b, link)

		return respondText("Linking success!")
	}
}

func crossoverList(b *bot.Bot, chat *crosschat.Service) cmdroute.CommandHandlerFunc {
	return func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		codes, err := chat.Rooms(ctx, data.Event.GuildID, data.Event.ChannelID)
		if err != nil {
			return crossoverError(b, err)
		}

		if len(codes) == 0 {
			return respondText("This channel is not part of any cross-chat room.")
		}

		lines := slices.Map(codes, func(code string) string {
			return fmt.Sprintf("- `%v`", code)
		})

		eb := embeds.NewBuilder()
		eb.Title("Cross-chat rooms")
		eb.Description(strings.Join(lines, "\n"))

		return &api.InteractionResponseData{
			Embeds: &[]discord.Embed{eb.Build()},
		}
	}
}

func crossoverLink(b *bot.Bot, chat *crosschat.Service) cmdroute.CommandHandlerFunc {
	return func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		guildSnowflake, err := discord.ParseSnowflake(data.Options.Find("guild").String())
		if err != nil {
			return respondText("That is not a valid guild ID.")
		}

		channelSnowflake, err := discord.ParseSnowflake(data.Options.Find("channel").String())
		if err != nil {
			return respondText("That is not a valid channel ID.")
		}

		link, err := chat.DirectLink(ctx,
			data.Event.GuildID, data.Event.ChannelID,
			discord.GuildID(guildSnowflake), discord.ChannelID(channelSnowflake),
		)
		if err != nil {
			return crossoverError(b, err)
		}

		notifyCounterpart(b, link)

		return respondText("Linking success!")
	}
}

// notifyCounterpart tells the other side of a fresh link where the new
// connection comes from.
func notifyCounterpart(b *bot.Bot, link *crosschat.LinkResult) {
	content := fmt.Sprintf("New connection comes from `#%v` at `%v`!",
		link.Source.ChannelName, link.Source.GuildName)

	if _, err := b.State.SendMessage(link.Target.ChannelID, content); err != nil {
		b.Log.With(
			"channel_id", link.Target.ChannelID,
			"error", err,
		).Warn("failed to notify the link counterpart")
	}
}

func crossoverError(b *bot.Bot, err error) *api.InteractionResponseData {
	switch {
	case errors.Is(err, crosschat.ErrRoomNotFound):
		return respondText("Room code does not exist!")
	case errors.Is(err, crosschat.ErrTargetNotFound):
		return respondText("I cannot reach that channel. Check the IDs and my permissions.")
	case errors.Is(err, crosschat.ErrSelfConnect):
		return respondText("Don't connect to yourself!")
	case errors.Is(err, crosschat.ErrAlreadyConnected):
		return respondText("Already connected!")
	case errors.Is(err, crosschat.ErrUnsupportedChannel):
		return respondText("You are not inside our accepted channel type (Text/Thread).")
	case errors.Is(err, crosschat.ErrDeclined):
		return respondText("The other side declined the link request.")
	case errors.Is(err, crosschat.ErrConfirmTimeout):
		return respondText("The other side did not answer in time.")
	}

	b.Log.With("error", err).Error("crossover command failed")

	eb := embeds.NewBuilder().ErrorTemplate("Please try again later.")
	return &api.InteractionResponseData{Embeds: &[]discord.Embed{eb.Build()}}
}
