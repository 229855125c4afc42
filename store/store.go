package store

import (
	"context"
	"errors"
)

type Store interface {
	GuildStore
	RoomStore
	ConnectionStore
	MessageStore
	Init(ctx context.Context) error
	Close(ctx context.Context) error
}

// Common errors
var (
	ErrInternal         = errors.New("internal error")
	ErrRoomNotFound     = errors.New("room not found")
	ErrConnectionExists = errors.New("connection already exists")
	ErrMappingExists    = errors.New("message mapping already exists")
)
