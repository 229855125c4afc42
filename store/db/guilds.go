package db

import (
	"context"

	"github.com/nameless-bot/nameless/ctxzap"
	"github.com/nameless-bot/nameless/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type guildStore struct {
	db *gorm.DB
}

func (gs *guildStore) EnsureGuild(ctx context.Context, guildID int64) error {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := gs.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&store.Guild{ID: guildID}).Error
	if err != nil && !isDuplicate(err) {
		log.With("guild_id", guildID, "error", err).
			Error("failed to ensure a guild")

		return store.ErrInternal
	}

	return nil
}
