package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nameless-bot/nameless/ctxzap"
	"github.com/nameless-bot/nameless/store"
	"gorm.io/gorm"
)

type roomStore struct {
	db *gorm.DB
}

func (rs *roomStore) FindOrCreateRoom(ctx context.Context, guildID, channelID int64) (*store.Room, error) {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var room store.Room
	err := rs.db.WithContext(ctx).
		Where(&store.Room{GuildID: guildID, ChannelID: channelID}).
		Attrs(store.Room{Code: uuid.NewString()}).
		FirstOrCreate(&room).Error

	// A concurrent publish may win the insert; the unique index on the
	// (guild, channel) pair guarantees the retry finds that row.
	if isDuplicate(err) {
		err = rs.db.WithContext(ctx).
			Where(&store.Room{GuildID: guildID, ChannelID: channelID}).
			First(&room).Error
	}

	if err != nil {
		log.With("guild_id", guildID, "channel_id", channelID, "error", err).
			Error("failed to find or create a room")

		return nil, store.ErrInternal
	}

	return &room, nil
}

func (rs *roomStore) Room(ctx context.Context, code string) (*store.Room, error) {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var room store.Room
	err := rs.db.WithContext(ctx).Where("code = ?", code).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrRoomNotFound
		}

		log.With("code", code, "error", err).
			Error("failed to look up a room")

		return nil, store.ErrInternal
	}

	return &room, nil
}
