package crosschat

import (
	"bytes"
	"fmt"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/utils/sendpart"
	"github.com/nameless-bot/nameless/arikawautils/embeds"
	"github.com/nameless-bot/nameless/ctxzap"
)

// HandleMessageCreate fans an inbound message out to every destination
// this channel is connected to. Delivery is best effort and at most
// once per destination: unresolvable or failing destinations are
// skipped, never retried, and never affect the rest of the fan-out.
func (s *Service) HandleMessageCreate(ev *gateway.MessageCreateEvent) {
	if ev.Author.ID == s.me {
		return
	}

	if !ev.GuildID.IsValid() {
		return
	}

	log := s.log.With(
		"guild_id", ev.GuildID,
		"channel_id", ev.ChannelID,
		"message_id", ev.ID,
	)
	ctx := ctxzap.ToContext(s.ctx, log)

	source, err := s.acceptedChannel(ev.ChannelID)
	if err != nil {
		return
	}

	connections, err := s.store.ConnectionsBySource(ctx, int64(ev.GuildID), int64(ev.ChannelID))
	if err != nil {
		log.With("error", err).Error("failed to resolve outbound connections")
		return
	}

	if len(connections) == 0 {
		return
	}

	guild, err := s.state.Guild(ev.GuildID)
	if err != nil {
		log.With("error", err).Warn("failed to resolve the source guild")
		return
	}

	embed := cloneEmbed(&ev.Message, guild, source)
	blobs := s.mirrorAttachments(ctx, ev.Attachments)

	for _, conn := range connections {
		if _, err := s.state.Guild(discord.GuildID(conn.TargetGuildID)); err != nil {
			continue
		}

		target, err := s.acceptedChannel(discord.ChannelID(conn.TargetChannelID))
		if err != nil {
			continue
		}

		sent, err := s.state.SendMessageComplex(target.ID, api.SendMessageData{
			Embeds: []discord.Embed{embed},
			Files:  blobs.files(),
		})
		if err != nil {
			log.With("connection_id", conn.ID, "target_channel_id", target.ID, "error", err).
				Warn("failed to deliver a clone")
			continue
		}

		if err := s.store.CreateMapping(ctx, conn.ID, int64(ev.ID), int64(sent.ID)); err != nil {
			log.With("connection_id", conn.ID, "cloned_message_id", sent.ID, "error", err).
				Warn("failed to record a message mapping")
		}
	}
}

// cloneEmbed composes the relay payload: the origin text as the embed
// description, decorated with who wrote it and where.
func cloneEmbed(msg *discord.Message, guild *discord.Guild, ch *discord.Channel) discord.Embed {
	eb := embeds.NewBuilder()

	eb.Author(fmt.Sprintf("@%v wrote:", msg.Author.Username), msg.Author.AvatarURL(), "")
	eb.Footer(fmt.Sprintf("%v at #%v", guild.Name, ch.Name), guild.IconURL())
	eb.Description(msg.Content)

	if len(msg.Stickers) != 0 {
		eb.Image(stickerURL(msg.Stickers[0]))
	}

	return eb.Build()
}

func stickerURL(sticker discord.StickerItem) string {
	return fmt.Sprintf("https://cdn.discordapp.com/stickers/%v.png", sticker.ID)
}

// attachmentBlobs carries downloaded attachment bytes so every
// destination gets its own reader.
type attachmentBlobs []attachmentBlob

type attachmentBlob struct {
	name string
	data []byte
}

func (b attachmentBlobs) files() []sendpart.File {
	if len(b) == 0 {
		return nil
	}

	files := make([]sendpart.File, 0, len(b))
	for _, blob := range b {
		files = append(files, sendpart.File{
			Name:   blob.name,
			Reader: bytes.NewReader(blob.data),
		})
	}

	return files
}
