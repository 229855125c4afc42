package store

import (
	"context"
	"time"
)

type GuildStore interface {
	// EnsureGuild creates a guild record if one does not exist yet.
	// Guild rows are created lazily on first use and never deleted.
	EnsureGuild(ctx context.Context, guildID int64) error
}

type Guild struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"guild_id"`
	CreatedAt time.Time `json:"created_at"`
}
