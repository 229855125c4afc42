package store

import (
	"context"
	"time"
)

type MessageStore interface {
	// CreateMapping records the clone produced for one origin message
	// over one connection. At most one clone per (connection, origin);
	// a duplicate pair returns ErrMappingExists.
	CreateMapping(ctx context.Context, connectionID, originMessageID, clonedMessageID int64) error

	// MappingsByOrigin returns every mapping of the given origin message
	// across all connections whose source is (guildID, channelID), with
	// Connection populated. An unknown origin yields an empty slice.
	MappingsByOrigin(ctx context.Context, guildID, channelID, originMessageID int64) ([]*MessageMapping, error)

	// PruneMappings deletes mappings created before the cutoff and
	// returns the number of rows removed.
	PruneMappings(ctx context.Context, cutoff time.Time) (int64, error)
}

// MessageMapping ties an origin message to the clone it produced over
// one connection. Rows are written after a successful clone send and
// never updated.
type MessageMapping struct {
	ID              int64      `gorm:"primaryKey" json:"id"`
	ConnectionID    int64      `gorm:"uniqueIndex:idx_mapping_origin;not null" json:"connection_id"`
	Connection      Connection `gorm:"foreignKey:ConnectionID;constraint:OnDelete:CASCADE" json:"connection"`
	OriginMessageID int64      `gorm:"uniqueIndex:idx_mapping_origin;not null" json:"origin_message_id"`
	ClonedMessageID int64      `gorm:"not null" json:"cloned_message_id"`
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`
}
