package db

import (
	"context"
	"time"

	"github.com/nameless-bot/nameless/ctxzap"
	"github.com/nameless-bot/nameless/store"
	"gorm.io/gorm"
)

type messageStore struct {
	db *gorm.DB
}

func (ms *messageStore) CreateMapping(ctx context.Context, connectionID, originMessageID, clonedMessageID int64) error {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	mapping := store.MessageMapping{
		ConnectionID:    connectionID,
		OriginMessageID: originMessageID,
		ClonedMessageID: clonedMessageID,
	}

	err := ms.db.WithContext(ctx).Create(&mapping).Error
	if isDuplicate(err) {
		return store.ErrMappingExists
	}

	if err != nil {
		log.With(
			"connection_id", connectionID,
			"origin_message_id", originMessageID,
			"cloned_message_id", clonedMessageID,
			"error", err,
		).Error("failed to insert a message mapping")

		return store.ErrInternal
	}

	return nil
}

func (ms *messageStore) MappingsByOrigin(ctx context.Context, guildID, channelID, originMessageID int64) ([]*store.MessageMapping, error) {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var connectionIDs []int64
	err := ms.db.WithContext(ctx).Model(&store.Connection{}).
		Where("source_guild_id = ? AND source_channel_id = ?", guildID, channelID).
		Pluck("id", &connectionIDs).Error
	if err != nil {
		log.With("guild_id", guildID, "channel_id", channelID, "error", err).
			Error("failed to resolve source connections")

		return nil, store.ErrInternal
	}

	if len(connectionIDs) == 0 {
		return nil, nil
	}

	var mappings []*store.MessageMapping
	err = ms.db.WithContext(ctx).
		Preload("Connection").
		Where("connection_id IN ? AND origin_message_id = ?", connectionIDs, originMessageID).
		Order("id").
		Find(&mappings).Error
	if err != nil {
		log.With("origin_message_id", originMessageID, "error", err).
			Error("failed to look up message mappings")

		return nil, store.ErrInternal
	}

	return mappings, nil
}

func (ms *messageStore) PruneMappings(ctx context.Context, cutoff time.Time) (int64, error) {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res := ms.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&store.MessageMapping{})
	if res.Error != nil {
		log.With("cutoff", cutoff, "error", res.Error).
			Error("failed to prune message mappings")

		return 0, store.ErrInternal
	}

	return res.RowsAffected, nil
}
