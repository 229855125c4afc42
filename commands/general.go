package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/api/cmdroute"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/nameless-bot/nameless/arikawautils/embeds"
	"github.com/nameless-bot/nameless/bot"
)

func ping(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:        "ping",
		Description: "Get the bot's response time",
		Type:        discord.ChatInputCommand,
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		latency := b.State.Gateway().Latency().Round(time.Millisecond).String()

		eb := embeds.NewBuilder()
		eb.Title("🏓 Pong!").AddField("Latency", latency)

		return &api.InteractionResponseData{
			Embeds: &[]discord.Embed{
				eb.Build(),
			},
		}
	}
}

func user(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:        "user",
		Description: "View someone's information",
		Type:        discord.ChatInputCommand,
		Options: discord.CommandOptions{
			discord.NewUserOption("user", "A member, default to you", false),
		},
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		userID := data.Event.SenderID()

		if opt := data.Options.Find("user"); opt.String() != "" {
			snowflake, err := opt.SnowflakeValue()
			if err == nil && snowflake.IsValid() {
				userID = discord.UserID(snowflake)
			}
		}

		u, err := b.State.User(userID)
		if err != nil {
			b.Log.With("user_id", userID, "error", err).Warn("failed to resolve a user")

			eb := embeds.NewBuilder().ErrorTemplate("I cannot find that user.")
			return &api.InteractionResponseData{Embeds: &[]discord.Embed{eb.Build()}}
		}

		title := "@" + u.Username
		if u.Bot {
			title += " [🤖]"
		}

		eb := embeds.NewBuilder()
		eb.Title(title)
		eb.Thumbnail(u.AvatarURL())
		eb.AddField("ℹ️ User ID", u.ID.String())
		eb.AddField("📆 Account created since", fmt.Sprintf("<t:%v:R>", u.ID.Time().Unix()))

		if data.Event.GuildID.IsValid() {
			if member, err := b.State.Member(data.Event.GuildID, userID); err == nil {
				eb.AddField("🤝 Membership since", fmt.Sprintf("<t:%v:R>", member.Joined.Time().Unix()))
			}
		}

		return &api.InteractionResponseData{
			Embeds: &[]discord.Embed{eb.Build()},
		}
	}
}

func guild(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:           "guild",
		Description:    "View this guild's information",
		Type:           discord.ChatInputCommand,
		NoDMPermission: true,
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		guildID := data.Event.GuildID
		if !guildID.IsValid() {
			return respondText("This command only works inside a guild.")
		}

		g, err := b.State.GuildWithCount(guildID)
		if err != nil {
			b.Log.With("guild_id", guildID, "error", err).Warn("failed to resolve a guild")

			eb := embeds.NewBuilder().ErrorTemplate("I cannot resolve this guild.")
			return &api.InteractionResponseData{Embeds: &[]discord.Embed{eb.Build()}}
		}

		channels, _ := b.State.Channels(guildID)

		eb := embeds.NewBuilder()
		eb.Title(g.Name)
		eb.Thumbnail(g.IconURL())
		eb.AddField("ℹ️ Guild ID", g.ID.String())
		eb.AddField("⏰ Creation date", fmt.Sprintf("<t:%v:f>", g.ID.Time().Unix()))
		eb.AddField("👋 Headcount", fmt.Sprintf("~%v member(s)", g.ApproximateMembers))
		eb.AddField("💬 Channels", fmt.Sprintf("%v channel(s)", len(channels)))
		eb.AddField("⭐ Roles", fmt.Sprintf("%v", len(g.Roles)))
		eb.AddField("⬆️ Boosts", fmt.Sprintf("%v boost(s)", g.NitroBoosters))

		return &api.InteractionResponseData{
			Embeds: &[]discord.Embed{eb.Build()},
		}
	}
}

func about(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:        "about",
		Description: "So, you would like to know me?",
		Type:        discord.ChatInputCommand,
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		eb := embeds.NewBuilder()
		eb.Title("nameless*")
		eb.Description(b.Config.String("nameless.description"))
		eb.AddField("⏱️ Uptime", fmt.Sprintf("Started <t:%v:R>", b.StartTime.Unix()))

		if version := b.Config.String("nameless.version"); version != "" {
			eb.AddField("🏷️ Version", version)
		}

		if support := b.Config.String("nameless.support_server"); support != "" {
			eb.AddField("💬 Support server", support)
		}

		return &api.InteractionResponseData{
			Embeds: &[]discord.Embed{eb.Build()},
		}
	}
}
