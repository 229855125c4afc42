package store

import (
	"context"
	"time"
)

type RoomStore interface {
	// FindOrCreateRoom returns the room anchored to the (guild, channel)
	// pair, creating it with a fresh code on first call. At most one room
	// exists per pair.
	FindOrCreateRoom(ctx context.Context, guildID, channelID int64) (*Room, error)

	// Room resolves a published room code. Returns ErrRoomNotFound for
	// unknown codes.
	Room(ctx context.Context, code string) (*Room, error)
}

// Room is a publishable rendezvous point bound to one (guild, channel).
// The code is its shared identity; rooms are immutable once created.
type Room struct {
	Code      string    `gorm:"primaryKey" json:"code"`
	GuildID   int64     `gorm:"uniqueIndex:idx_room_endpoint;not null" json:"guild_id"`
	ChannelID int64     `gorm:"uniqueIndex:idx_room_endpoint;not null" json:"channel_id"`
	CreatedAt time.Time `json:"created_at"`
}
