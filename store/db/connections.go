package db

import (
	"context"

	"github.com/nameless-bot/nameless/ctxzap"
	"github.com/nameless-bot/nameless/store"
	"gorm.io/gorm"
)

type connectionStore struct {
	db *gorm.DB
}

func (cs *connectionStore) CreateConnectionPair(ctx context.Context, roomCode string, sourceGuildID, sourceChannelID, targetGuildID, targetChannelID int64) error {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		outbound := store.Connection{
			RoomCode:        roomCode,
			SourceGuildID:   sourceGuildID,
			SourceChannelID: sourceChannelID,
			TargetGuildID:   targetGuildID,
			TargetChannelID: targetChannelID,
		}
		if err := tx.Create(&outbound).Error; err != nil {
			return err
		}

		inbound := store.Connection{
			RoomCode:        roomCode,
			SourceGuildID:   targetGuildID,
			SourceChannelID: targetChannelID,
			TargetGuildID:   sourceGuildID,
			TargetChannelID: sourceChannelID,
		}

		return tx.Create(&inbound).Error
	})

	if isDuplicate(err) {
		return store.ErrConnectionExists
	}

	if err != nil {
		log.With(
			"room_code", roomCode,
			"source_guild_id", sourceGuildID,
			"source_channel_id", sourceChannelID,
			"target_guild_id", targetGuildID,
			"target_channel_id", targetChannelID,
			"error", err,
		).Error("failed to create a connection pair")

		return store.ErrInternal
	}

	return nil
}

func (cs *connectionStore) Connected(ctx context.Context, aGuildID, aChannelID, bGuildID, bChannelID int64) (bool, error) {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var count int64
	err := cs.db.WithContext(ctx).Model(&store.Connection{}).
		Where(
			"(source_guild_id = ? AND source_channel_id = ? AND target_guild_id = ? AND target_channel_id = ?)"+
				" OR (source_guild_id = ? AND source_channel_id = ? AND target_guild_id = ? AND target_channel_id = ?)",
			aGuildID, aChannelID, bGuildID, bChannelID,
			bGuildID, bChannelID, aGuildID, aChannelID,
		).
		Count(&count).Error
	if err != nil {
		log.With("error", err).Error("failed to check connection existence")

		return false, store.ErrInternal
	}

	return count > 0, nil
}

func (cs *connectionStore) ConnectionsBySource(ctx context.Context, guildID, channelID int64) ([]*store.Connection, error) {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var connections []*store.Connection
	err := cs.db.WithContext(ctx).
		Where("source_guild_id = ? AND source_channel_id = ?", guildID, channelID).
		Order("id").
		Find(&connections).Error
	if err != nil {
		log.With("guild_id", guildID, "channel_id", channelID, "error", err).
			Error("failed to list connections")

		return nil, store.ErrInternal
	}

	return connections, nil
}

func (cs *connectionStore) RoomCodes(ctx context.Context, guildID, channelID int64) ([]string, error) {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var codes []string
	err := cs.db.WithContext(ctx).Model(&store.Connection{}).
		Distinct("room_code").
		Where(
			"(source_guild_id = ? AND source_channel_id = ?) OR (target_guild_id = ? AND target_channel_id = ?)",
			guildID, channelID, guildID, channelID,
		).
		Pluck("room_code", &codes).Error
	if err != nil {
		log.With("guild_id", guildID, "channel_id", channelID, "error", err).
			Error("failed to list room codes")

		return nil, store.ErrInternal
	}

	return codes, nil
}
