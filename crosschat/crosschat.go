// Package crosschat links text channels across guilds into shared
// conversations: it publishes room codes, connects endpoints, fans
// inbound messages out to every linked destination and keeps the
// origin-to-clone mappings needed to propagate edits and deletes.
package crosschat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/nameless-bot/nameless/store"
	"go.uber.org/zap"
)

var (
	ErrRoomNotFound       = errors.New("room code does not exist")
	ErrTargetNotFound     = errors.New("target channel does not exist")
	ErrSelfConnect        = errors.New("cannot connect a channel to itself")
	ErrAlreadyConnected   = errors.New("channels are already connected")
	ErrUnsupportedChannel = errors.New("channel type is not supported")
	ErrDeclined           = errors.New("link declined by the target channel")
	ErrConfirmTimeout     = errors.New("link confirmation timed out")
)

// Transport is the slice of the Discord API the relay needs. It is
// satisfied by *state.State.
type Transport interface {
	Me() (*discord.User, error)
	Guild(id discord.GuildID) (*discord.Guild, error)
	Channel(id discord.ChannelID) (*discord.Channel, error)
	Message(ch discord.ChannelID, msg discord.MessageID) (*discord.Message, error)
	SendMessageComplex(ch discord.ChannelID, data api.SendMessageData) (*discord.Message, error)
	EditMessageComplex(ch discord.ChannelID, msg discord.MessageID, data api.EditMessageData) (*discord.Message, error)
	DeleteMessage(ch discord.ChannelID, msg discord.MessageID, reason api.AuditLogReason) error
	RespondInteraction(id discord.InteractionID, token string, resp api.InteractionResponse) error
}

// EventSource registers gateway event handlers. Satisfied by
// *state.State.
type EventSource interface {
	AddHandler(handler any) (rm func())
}

type Config struct {
	Transport Transport
	Events    EventSource
	Store     store.Store
	Log       *zap.SugaredLogger

	// ConfirmTimeout bounds the wait for a direct-link consent prompt.
	ConfirmTimeout time.Duration

	// Retention is how long message mappings are kept before the
	// janitor prunes them. Zero disables pruning.
	Retention time.Duration
}

type Service struct {
	state  Transport
	events EventSource
	store  store.Store
	log    *zap.SugaredLogger

	// ctx is the process context; gateway handlers receive no context
	// of their own, so event-driven work derives from it.
	ctx context.Context

	confirmTimeout time.Duration
	retention      time.Duration

	me discord.UserID
}

func NewService(ctx context.Context, cfg Config) (*Service, error) {
	me, err := cfg.Transport.Me()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve the bot user: %w", err)
	}

	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = 30 * time.Second
	}

	return &Service{
		state:          cfg.Transport,
		events:         cfg.Events,
		store:          cfg.Store,
		log:            cfg.Log,
		ctx:            ctx,
		confirmTimeout: cfg.ConfirmTimeout,
		retention:      cfg.Retention,
		me:             me.ID,
	}, nil
}

// accepted reports whether a channel can take part in a crosschat
// conversation. Forums, categories and DMs are excluded.
func accepted(t discord.ChannelType) bool {
	switch t {
	case discord.GuildText, discord.GuildNews,
		discord.GuildNewsThread, discord.GuildPublicThread, discord.GuildPrivateThread:
		return true
	}

	return false
}

// acceptedChannel resolves a channel and verifies it can participate.
func (s *Service) acceptedChannel(id discord.ChannelID) (*discord.Channel, error) {
	ch, err := s.state.Channel(id)
	if err != nil {
		return nil, err
	}

	if !accepted(ch.Type) {
		return nil, ErrUnsupportedChannel
	}

	return ch, nil
}
