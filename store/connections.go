package store

import (
	"context"
	"time"
)

type ConnectionStore interface {
	// CreateConnectionPair links two endpoints by writing both directed
	// edges in a single transaction. Returns ErrConnectionExists when an
	// edge between the endpoints already exists in either direction; the
	// unique index is authoritative, so concurrent connects cannot both
	// succeed.
	CreateConnectionPair(ctx context.Context, roomCode string, sourceGuildID, sourceChannelID, targetGuildID, targetChannelID int64) error

	// Connected reports whether an edge exists between the two endpoints
	// in either direction.
	Connected(ctx context.Context, aGuildID, aChannelID, bGuildID, bChannelID int64) (bool, error)

	// ConnectionsBySource returns all outbound edges of a channel.
	ConnectionsBySource(ctx context.Context, guildID, channelID int64) ([]*Connection, error)

	// RoomCodes returns the distinct room codes a channel participates
	// in, as source or target.
	RoomCodes(ctx context.Context, guildID, channelID int64) ([]string, error)
}

// Connection is a directed relay edge: messages posted at the source
// endpoint are cloned to the target endpoint. A full link is two rows.
type Connection struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	RoomCode        string    `gorm:"index;not null" json:"room_code"`
	SourceGuildID   int64     `gorm:"uniqueIndex:idx_connection_edge;not null" json:"source_guild_id"`
	SourceChannelID int64     `gorm:"uniqueIndex:idx_connection_edge;not null" json:"source_channel_id"`
	TargetGuildID   int64     `gorm:"uniqueIndex:idx_connection_edge;not null" json:"target_guild_id"`
	TargetChannelID int64     `gorm:"uniqueIndex:idx_connection_edge;not null" json:"target_channel_id"`
	CreatedAt       time.Time `json:"created_at"`
}
