package crosschat

import (
	"context"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/nameless-bot/nameless/ctxzap"
	"github.com/nameless-bot/nameless/slices"
	"github.com/nameless-bot/nameless/store"
	"go.uber.org/zap"
)

// HandleMessageUpdate propagates an origin edit to every known clone:
// each clone keeps its decoration and gets its displayed text replaced
// with the new content. Clones that are already gone are skipped.
func (s *Service) HandleMessageUpdate(ev *gateway.MessageUpdateEvent) {
	if ev.Author.ID == s.me {
		return
	}

	if !ev.GuildID.IsValid() {
		return
	}

	// Link unfurls arrive as update events without a content field;
	// writing that through would blank every clone.
	if ev.Content == "" {
		return
	}

	log := s.log.With(
		"guild_id", ev.GuildID,
		"channel_id", ev.ChannelID,
		"message_id", ev.ID,
	)
	ctx := ctxzap.ToContext(s.ctx, log)

	if _, err := s.acceptedChannel(ev.ChannelID); err != nil {
		return
	}

	for _, mapping := range s.cloneSet(ctx, log, ev.GuildID, ev.ChannelID, ev.ID) {
		targetChannel := discord.ChannelID(mapping.Connection.TargetChannelID)

		clone, err := s.state.Message(targetChannel, discord.MessageID(mapping.ClonedMessageID))
		if err != nil {
			// Deleted out from under us; nothing left to edit.
			continue
		}

		if len(clone.Embeds) == 0 {
			continue
		}

		embed := clone.Embeds[0]
		embed.Description = ev.Content

		_, err = s.state.EditMessageComplex(targetChannel, clone.ID, api.EditMessageData{
			Embeds: &[]discord.Embed{embed},
		})
		if err != nil {
			log.With("cloned_message_id", clone.ID, "error", err).
				Warn("failed to edit a clone")
		}
	}
}

// HandleMessageDelete deletes every known clone of a deleted origin
// message. Messages without mappings are a silent no-op.
func (s *Service) HandleMessageDelete(ev *gateway.MessageDeleteEvent) {
	if !ev.GuildID.IsValid() {
		return
	}

	log := s.log.With(
		"guild_id", ev.GuildID,
		"channel_id", ev.ChannelID,
		"message_id", ev.ID,
	)
	ctx := ctxzap.ToContext(s.ctx, log)

	for _, mapping := range s.cloneSet(ctx, log, ev.GuildID, ev.ChannelID, ev.ID) {
		targetChannel := discord.ChannelID(mapping.Connection.TargetChannelID)
		cloneID := discord.MessageID(mapping.ClonedMessageID)

		err := s.state.DeleteMessage(targetChannel, cloneID, "crosschat origin was deleted")
		if err != nil {
			log.With("cloned_message_id", cloneID, "error", err).
				Debug("failed to delete a clone")
		}
	}
}

// cloneSet resolves the fan-out set of an origin message: one mapping
// per connection, destinations that can no longer be resolved dropped.
// Should the store ever hold several mappings for one connection, the
// first row wins.
func (s *Service) cloneSet(ctx context.Context, log *zap.SugaredLogger, guildID discord.GuildID, channelID discord.ChannelID, messageID discord.MessageID) []*store.MessageMapping {
	mappings, err := s.store.MappingsByOrigin(ctx, int64(guildID), int64(channelID), int64(messageID))
	if err != nil {
		log.With("error", err).Error("failed to resolve message mappings")
		return nil
	}

	var result []*store.MessageMapping

	for _, mapping := range mappings {
		first, _ := slices.Find(mappings, func(m *store.MessageMapping) bool {
			return m.ConnectionID == mapping.ConnectionID
		})
		if first != mapping {
			continue
		}

		if _, err := s.state.Guild(discord.GuildID(mapping.Connection.TargetGuildID)); err != nil {
			continue
		}

		if _, err := s.acceptedChannel(discord.ChannelID(mapping.Connection.TargetChannelID)); err != nil {
			continue
		}

		result = append(result, mapping)
	}

	return result
}
