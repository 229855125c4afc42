package crosschat

import (
	"context"
	"errors"
	"fmt"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/nameless-bot/nameless/store"
)

// Endpoint names one linked end of a connection.
type Endpoint struct {
	GuildID     discord.GuildID
	ChannelID   discord.ChannelID
	GuildName   string
	ChannelName string
}

// LinkResult describes a successfully established link so the command
// surface can acknowledge both sides.
type LinkResult struct {
	RoomCode string
	Source   Endpoint
	Target   Endpoint
}

// Publish returns the room code of the given channel, creating the room
// on first use. Repeated calls return the same code.
func (s *Service) Publish(ctx context.Context, guildID discord.GuildID, channelID discord.ChannelID) (string, error) {
	if _, err := s.acceptedChannel(channelID); err != nil {
		if errors.Is(err, ErrUnsupportedChannel) {
			return "", err
		}

		return "", fmt.Errorf("failed to resolve the channel: %w", err)
	}

	if err := s.store.EnsureGuild(ctx, int64(guildID)); err != nil {
		return "", err
	}

	room, err := s.store.FindOrCreateRoom(ctx, int64(guildID), int64(channelID))
	if err != nil {
		return "", err
	}

	return room.Code, nil
}

// Connect links the calling channel with the channel that published the
// given room code. Both directed edges are written atomically, so relay
// works both ways immediately.
func (s *Service) Connect(ctx context.Context, guildID discord.GuildID, channelID discord.ChannelID, roomCode string) (*LinkResult, error) {
	source, err := s.endpoint(guildID, channelID)
	if err != nil {
		return nil, err
	}

	room, err := s.store.Room(ctx, roomCode)
	if err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}

		return nil, err
	}

	if room.GuildID == int64(guildID) && room.ChannelID == int64(channelID) {
		return nil, ErrSelfConnect
	}

	target, err := s.endpoint(discord.GuildID(room.GuildID), discord.ChannelID(room.ChannelID))
	if err != nil {
		// The published channel is gone or no longer reachable; to the
		// caller that is the same as a dead code.
		if errors.Is(err, ErrUnsupportedChannel) {
			return nil, err
		}

		return nil, ErrRoomNotFound
	}

	if err := s.link(ctx, room.Code, source, target); err != nil {
		return nil, err
	}

	return &LinkResult{RoomCode: room.Code, Source: *source, Target: *target}, nil
}

// DirectLink connects the calling channel straight to a target channel
// that never published a code. The target channel has to approve via a
// button prompt; declining or letting it expire leaves no trace.
func (s *Service) DirectLink(ctx context.Context, guildID discord.GuildID, channelID discord.ChannelID, targetGuildID discord.GuildID, targetChannelID discord.ChannelID) (*LinkResult, error) {
	source, err := s.endpoint(guildID, channelID)
	if err != nil {
		return nil, err
	}

	if guildID == targetGuildID && channelID == targetChannelID {
		return nil, ErrSelfConnect
	}

	target, err := s.endpoint(targetGuildID, targetChannelID)
	if err != nil {
		if errors.Is(err, ErrUnsupportedChannel) {
			return nil, err
		}

		return nil, ErrTargetNotFound
	}

	connected, err := s.store.Connected(ctx,
		int64(source.GuildID), int64(source.ChannelID),
		int64(target.GuildID), int64(target.ChannelID),
	)
	if err != nil {
		return nil, err
	}

	if connected {
		return nil, ErrAlreadyConnected
	}

	prompt := fmt.Sprintf(
		"`#%v` at `%v` wants to link this channel into a cross-chat conversation. Accept?",
		source.ChannelName, source.GuildName,
	)

	ok, err := s.confirmLink(ctx, target.ChannelID, prompt)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrDeclined
	}

	// The room anchors at the approving side, same as a published code.
	if err := s.store.EnsureGuild(ctx, int64(target.GuildID)); err != nil {
		return nil, err
	}

	room, err := s.store.FindOrCreateRoom(ctx, int64(target.GuildID), int64(target.ChannelID))
	if err != nil {
		return nil, err
	}

	if err := s.link(ctx, room.Code, source, target); err != nil {
		return nil, err
	}

	return &LinkResult{RoomCode: room.Code, Source: *source, Target: *target}, nil
}

// Rooms lists the distinct room codes this channel takes part in,
// inbound or outbound.
func (s *Service) Rooms(ctx context.Context, guildID discord.GuildID, channelID discord.ChannelID) ([]string, error) {
	return s.store.RoomCodes(ctx, int64(guildID), int64(channelID))
}

// link writes the bidirectional connection pair. The existence check is
// advisory; the unique index settles concurrent connects and surfaces
// the loser as ErrAlreadyConnected.
func (s *Service) link(ctx context.Context, roomCode string, source, target *Endpoint) error {
	connected, err := s.store.Connected(ctx,
		int64(source.GuildID), int64(source.ChannelID),
		int64(target.GuildID), int64(target.ChannelID),
	)
	if err != nil {
		return err
	}

	if connected {
		return ErrAlreadyConnected
	}

	if err := s.store.EnsureGuild(ctx, int64(source.GuildID)); err != nil {
		return err
	}

	if err := s.store.EnsureGuild(ctx, int64(target.GuildID)); err != nil {
		return err
	}

	err = s.store.CreateConnectionPair(ctx, roomCode,
		int64(source.GuildID), int64(source.ChannelID),
		int64(target.GuildID), int64(target.ChannelID),
	)
	if err != nil {
		if errors.Is(err, store.ErrConnectionExists) {
			return ErrAlreadyConnected
		}

		return err
	}

	return nil
}

// endpoint resolves and validates one (guild, channel) pair.
func (s *Service) endpoint(guildID discord.GuildID, channelID discord.ChannelID) (*Endpoint, error) {
	guild, err := s.state.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve guild %v: %w", guildID, err)
	}

	ch, err := s.acceptedChannel(channelID)
	if err != nil {
		return nil, err
	}

	return &Endpoint{
		GuildID:     guildID,
		ChannelID:   channelID,
		GuildName:   guild.Name,
		ChannelName: ch.Name,
	}, nil
}
