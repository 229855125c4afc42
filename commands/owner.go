package commands

import (
	"context"
	"time"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/api/cmdroute"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/nameless-bot/nameless/bot"
)

func shutdown(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:        "shutdown",
		Description: "Shut the bot down (owner only)",
		Type:        discord.ChatInputCommand,
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		owner := b.Config.String("bot.owner")
		if owner == "" || data.Event.SenderID().String() != owner {
			return respondText("This command belongs to my owner.")
		}

		b.Log.With("sender", data.Event.SenderID()).Warn("shutdown requested")

		// Give the acknowledgement time to reach Discord first.
		time.AfterFunc(time.Second, b.Shutdown)

		return respondText("Bye owo!")
	}
}
