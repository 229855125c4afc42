package commands

import (
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/utils/json/option"
	"github.com/nameless-bot/nameless/bot"
	"github.com/nameless-bot/nameless/crosschat"
)

func RegisterCommands(b *bot.Bot, chat *crosschat.Service) {
	b.AddCommand(ping)
	b.AddCommand(user)
	b.AddCommand(guild)
	b.AddCommand(about)
	b.AddCommand(shutdown)

	b.AddCommandGroup(crossover(chat))
}

func respondText(content string) *api.InteractionResponseData {
	return &api.InteractionResponseData{
		Content: option.NewNullableString(content),
	}
}
