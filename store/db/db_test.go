package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nameless-bot/nameless/store"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	d, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open the database: %v", err)
	}

	if err := d.Init(context.Background()); err != nil {
		t.Fatalf("failed to initialize the database: %v", err)
	}

	t.Cleanup(func() {
		d.Close(context.Background())
	})

	return d
}

func TestEnsureGuildIdempotent(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	if err := d.EnsureGuild(ctx, 100); err != nil {
		t.Fatalf("first EnsureGuild failed: %v", err)
	}

	if err := d.EnsureGuild(ctx, 100); err != nil {
		t.Fatalf("second EnsureGuild failed: %v", err)
	}
}

func TestFindOrCreateRoom(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	if err := d.EnsureGuild(ctx, 100); err != nil {
		t.Fatalf("EnsureGuild failed: %v", err)
	}

	first, err := d.FindOrCreateRoom(ctx, 100, 200)
	if err != nil {
		t.Fatalf("failed to create a room: %v", err)
	}

	if first.Code == "" {
		t.Fatal("expected a non-empty room code")
	}

	second, err := d.FindOrCreateRoom(ctx, 100, 200)
	if err != nil {
		t.Fatalf("failed to find the room again: %v", err)
	}

	if second.Code != first.Code {
		t.Fatalf("expected the same code, got %v and %v", first.Code, second.Code)
	}

	other, err := d.FindOrCreateRoom(ctx, 100, 201)
	if err != nil {
		t.Fatalf("failed to create a second room: %v", err)
	}

	if other.Code == first.Code {
		t.Fatal("expected a different code for a different channel")
	}
}

func TestRoomUnknownCode(t *testing.T) {
	d := newTestDB(t)

	_, err := d.Room(context.Background(), "nope")
	if !errors.Is(err, store.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestCreateConnectionPair(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	for _, id := range []int64{100, 300} {
		if err := d.EnsureGuild(ctx, id); err != nil {
			t.Fatalf("EnsureGuild failed: %v", err)
		}
	}

	if err := d.CreateConnectionPair(ctx, "code", 100, 200, 300, 400); err != nil {
		t.Fatalf("failed to create a connection pair: %v", err)
	}

	connected, err := d.Connected(ctx, 100, 200, 300, 400)
	if err != nil {
		t.Fatalf("Connected failed: %v", err)
	}
	if !connected {
		t.Fatal("expected the endpoints to be connected")
	}

	// The check has to hold regardless of argument order.
	connected, err = d.Connected(ctx, 300, 400, 100, 200)
	if err != nil {
		t.Fatalf("Connected failed: %v", err)
	}
	if !connected {
		t.Fatal("expected the endpoints to be connected in reverse order")
	}

	outbound, err := d.ConnectionsBySource(ctx, 100, 200)
	if err != nil {
		t.Fatalf("ConnectionsBySource failed: %v", err)
	}
	if len(outbound) != 1 {
		t.Fatalf("expected 1 outbound edge, got %v", len(outbound))
	}

	inbound, err := d.ConnectionsBySource(ctx, 300, 400)
	if err != nil {
		t.Fatalf("ConnectionsBySource failed: %v", err)
	}
	if len(inbound) != 1 {
		t.Fatalf("expected 1 outbound edge from the other side, got %v", len(inbound))
	}
}

func TestCreateConnectionPairDuplicate(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	if err := d.CreateConnectionPair(ctx, "code", 100, 200, 300, 400); err != nil {
		t.Fatalf("failed to create a connection pair: %v", err)
	}

	err := d.CreateConnectionPair(ctx, "code", 100, 200, 300, 400)
	if !errors.Is(err, store.ErrConnectionExists) {
		t.Fatalf("expected ErrConnectionExists, got %v", err)
	}

	// The mirrored pair collides with the original's reverse edge.
	err = d.CreateConnectionPair(ctx, "other", 300, 400, 100, 200)
	if !errors.Is(err, store.ErrConnectionExists) {
		t.Fatalf("expected ErrConnectionExists for the mirrored pair, got %v", err)
	}
}

func TestRoomCodes(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	if err := d.CreateConnectionPair(ctx, "alpha", 100, 200, 300, 400); err != nil {
		t.Fatalf("failed to create the first pair: %v", err)
	}

	if err := d.CreateConnectionPair(ctx, "beta", 100, 200, 500, 600); err != nil {
		t.Fatalf("failed to create the second pair: %v", err)
	}

	codes, err := d.RoomCodes(ctx, 100, 200)
	if err != nil {
		t.Fatalf("RoomCodes failed: %v", err)
	}

	if len(codes) != 2 {
		t.Fatalf("expected 2 distinct codes, got %v", codes)
	}

	// The counterpart sees its room once, not once per direction.
	codes, err = d.RoomCodes(ctx, 300, 400)
	if err != nil {
		t.Fatalf("RoomCodes failed: %v", err)
	}

	if len(codes) != 1 || codes[0] != "alpha" {
		t.Fatalf("expected [alpha], got %v", codes)
	}
}

func TestCreateMapping(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	if err := d.CreateConnectionPair(ctx, "code", 100, 200, 300, 400); err != nil {
		t.Fatalf("failed to create a connection pair: %v", err)
	}

	outbound, err := d.ConnectionsBySource(ctx, 100, 200)
	if err != nil {
		t.Fatalf("ConnectionsBySource failed: %v", err)
	}

	connID := outbound[0].ID

	if err := d.CreateMapping(ctx, connID, 1000, 2000); err != nil {
		t.Fatalf("failed to create a mapping: %v", err)
	}

	// One clone per (connection, origin).
	err = d.CreateMapping(ctx, connID, 1000, 2001)
	if !errors.Is(err, store.ErrMappingExists) {
		t.Fatalf("expected ErrMappingExists, got %v", err)
	}

	mappings, err := d.MappingsByOrigin(ctx, 100, 200, 1000)
	if err != nil {
		t.Fatalf("MappingsByOrigin failed: %v", err)
	}

	if len(mappings) != 1 {
		t.Fatalf("expected 1 mapping, got %v", len(mappings))
	}

	if mappings[0].ClonedMessageID != 2000 {
		t.Fatalf("expected clone 2000, got %v", mappings[0].ClonedMessageID)
	}

	if mappings[0].Connection.TargetChannelID != 400 {
		t.Fatalf("expected the connection to be preloaded, got %+v", mappings[0].Connection)
	}
}

func TestMappingsByOriginUnknown(t *testing.T) {
	d := newTestDB(t)

	mappings, err := d.MappingsByOrigin(context.Background(), 100, 200, 9999)
	if err != nil {
		t.Fatalf("MappingsByOrigin failed: %v", err)
	}

	if len(mappings) != 0 {
		t.Fatalf("expected no mappings, got %v", len(mappings))
	}
}

func TestPruneMappings(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	if err := d.CreateConnectionPair(ctx, "code", 100, 200, 300, 400); err != nil {
		t.Fatalf("failed to create a connection pair: %v", err)
	}

	outbound, err := d.ConnectionsBySource(ctx, 100, 200)
	if err != nil {
		t.Fatalf("ConnectionsBySource failed: %v", err)
	}

	if err := d.CreateMapping(ctx, outbound[0].ID, 1000, 2000); err != nil {
		t.Fatalf("failed to create a mapping: %v", err)
	}

	pruned, err := d.PruneMappings(ctx, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("PruneMappings failed: %v", err)
	}
	if pruned != 0 {
		t.Fatalf("expected nothing pruned before the cutoff, got %v", pruned)
	}

	pruned, err = d.PruneMappings(ctx, time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("PruneMappings failed: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("expected 1 pruned mapping, got %v", pruned)
	}

	mappings, err := d.MappingsByOrigin(ctx, 100, 200, 1000)
	if err != nil {
		t.Fatalf("MappingsByOrigin failed: %v", err)
	}
	if len(mappings) != 0 {
		t.Fatalf("expected no mappings left, got %v", len(mappings))
	}
}
