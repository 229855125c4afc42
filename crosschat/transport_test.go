package crosschat_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/nameless-bot/nameless/crosschat"
	"github.com/nameless-bot/nameless/store/db"
	"go.uber.org/zap"
)

const botUserID discord.UserID = 999

type msgKey struct {
	channel discord.ChannelID
	message discord.MessageID
}

type sentMessage struct {
	channel discord.ChannelID
	id      discord.MessageID
	data    api.SendMessageData
}

type editRecord struct {
	channel discord.ChannelID
	message discord.MessageID
	data    api.EditMessageData
}

type deleteRecord struct {
	channel discord.ChannelID
	message discord.MessageID
}

// fakeTransport implements crosschat.Transport against in-memory guild
// and channel tables, recording every outbound call.
type fakeTransport struct {
	mu sync.Mutex

	guilds   map[discord.GuildID]*discord.Guild
	channels map[discord.ChannelID]*discord.Channel
	messages map[msgKey]*discord.Message

	failSend map[discord.ChannelID]bool
	nextID   discord.MessageID

	sent    []sentMessage
	edits   []editRecord
	deletes []deleteRecord
	acks    []discord.InteractionID
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		guilds:   make(map[discord.GuildID]*discord.Guild),
		channels: make(map[discord.ChannelID]*discord.Channel),
		messages: make(map[msgKey]*discord.Message),
		failSend: make(map[discord.ChannelID]bool),
		nextID:   5000,
	}
}

func (f *fakeTransport) addGuild(id discord.GuildID, name string) {
	f.guilds[id] = &discord.Guild{ID: id, Name: name}
}

func (f *fakeTransport) addChannel(guildID discord.GuildID, id discord.ChannelID, name string, t discord.ChannelType) {
	f.channels[id] = &discord.Channel{ID: id, GuildID: guildID, Name: name, Type: t}
}

func (f *fakeTransport) Me() (*discord.User, error) {
	return &discord.User{ID: botUserID, Username: "nameless", Bot: true}, nil
}

func (f *fakeTransport) Guild(id discord.GuildID) (*discord.Guild, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	g, ok := f.guilds[id]
	if !ok {
		return nil, errors.New("unknown guild")
	}

	return g, nil
}

func (f *fakeTransport) Channel(id discord.ChannelID) (*discord.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch, ok := f.channels[id]
	if !ok {
		return nil, errors.New("unknown channel")
	}

	return ch, nil
}

func (f *fakeTransport) Message(ch discord.ChannelID, msg discord.MessageID) (*discord.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, ok := f.messages[msgKey{ch, msg}]
	if !ok {
		return nil, errors.New("unknown message")
	}

	clone := *m
	return &clone, nil
}

func (f *fakeTransport) SendMessageComplex(ch discord.ChannelID, data api.SendMessageData) (*discord.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failSend[ch] {
		return nil, errors.New("send failed")
	}

	f.nextID++
	msg := &discord.Message{
		ID:        f.nextID,
		ChannelID: ch,
		Author:    discord.User{ID: botUserID, Username: "nameless", Bot: true},
		Content:   data.Content,
		Embeds:    data.Embeds,
	}

	f.messages[msgKey{ch, msg.ID}] = msg
	f.sent = append(f.sent, sentMessage{channel: ch, id: msg.ID, data: data})

	return msg, nil
}

func (f *fakeTransport) EditMessageComplex(ch discord.ChannelID, msg discord.MessageID, data api.EditMessageData) (*discord.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, ok := f.messages[msgKey{ch, msg}]
	if !ok {
		return nil, errors.New("unknown message")
	}

	if data.Content != nil {
		m.Content = data.Content.Val
	}

	if data.Embeds != nil {
		m.Embeds = *data.Embeds
	}

	f.edits = append(f.edits, editRecord{channel: ch, message: msg, data: data})

	return m, nil
}

func (f *fakeTransport) DeleteMessage(ch discord.ChannelID, msg discord.MessageID, _ api.AuditLogReason) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.messages[msgKey{ch, msg}]; !ok {
		return errors.New("unknown message")
	}

	delete(f.messages, msgKey{ch, msg})
	f.deletes = append(f.deletes, deleteRecord{channel: ch, message: msg})

	return nil
}

func (f *fakeTransport) RespondInteraction(id discord.InteractionID, _ string, _ api.InteractionResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.acks = append(f.acks, id)

	return nil
}

func (f *fakeTransport) sentTo(ch discord.ChannelID) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []sentMessage
	for _, s := range f.sent {
		if s.channel == ch {
			out = append(out, s)
		}
	}

	return out
}

func (f *fakeTransport) editsTo(ch discord.ChannelID) []editRecord {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []editRecord
	for _, e := range f.edits {
		if e.channel == ch {
			out = append(out, e)
		}
	}

	return out
}

func (f *fakeTransport) deleteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.deletes)
}

// fakeEvents implements crosschat.EventSource and lets tests dispatch
// interaction events into registered channel handlers.
type fakeEvents struct {
	mu       sync.Mutex
	next     int
	handlers map[int]any
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{handlers: make(map[int]any)}
}

func (f *fakeEvents) AddHandler(handler any) (rm func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.next
	f.next++
	f.handlers[id] = handler

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()

		delete(f.handlers, id)
	}
}

func (f *fakeEvents) dispatch(ev *gateway.InteractionCreateEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, h := range f.handlers {
		if ch, ok := h.(chan *gateway.InteractionCreateEvent); ok {
			ch <- ev
		}
	}
}

type testEnv struct {
	svc       *crosschat.Service
	transport *fakeTransport
	events    *fakeEvents
	db        *db.DB
}

func newTestEnv(t *testing.T, confirmTimeout time.Duration) *testEnv {
	t.Helper()

	st, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open the database: %v", err)
	}

	if err := st.Init(context.Background()); err != nil {
		t.Fatalf("failed to initialize the database: %v", err)
	}

	t.Cleanup(func() {
		st.Close(context.Background())
	})

	transport := newFakeTransport()
	events := newFakeEvents()

	svc, err := crosschat.NewService(context.Background(), crosschat.Config{
		Transport:      transport,
		Events:         events,
		Store:          st,
		Log:            zap.NewNop().Sugar(),
		ConfirmTimeout: confirmTimeout,
	})
	if err != nil {
		t.Fatalf("failed to build the service: %v", err)
	}

	return &testEnv{svc: svc, transport: transport, events: events, db: st}
}

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}

		time.Sleep(5 * time.Millisecond)
	}

	t.Fatal("condition never held")
}

// promptButtons extracts the accept and decline button IDs from a
// consent prompt message.
func promptButtons(t *testing.T, msg sentMessage) (accept, decline discord.ComponentID) {
	t.Helper()

	if len(msg.data.Components) == 0 {
		t.Fatal("prompt has no components")
	}

	row, ok := msg.data.Components[0].(*discord.ActionRowComponent)
	if !ok {
		t.Fatalf("expected an action row, got %T", msg.data.Components[0])
	}

	var buttons []*discord.ButtonComponent
	for _, c := range *row {
		if b, ok := c.(*discord.ButtonComponent); ok {
			buttons = append(buttons, b)
		}
	}

	if len(buttons) != 2 {
		t.Fatalf("expected 2 buttons, got %v", len(buttons))
	}

	return buttons[0].CustomID, buttons[1].CustomID
}

func buttonPress(channel discord.ChannelID, id discord.ComponentID) *gateway.InteractionCreateEvent {
	return &gateway.InteractionCreateEvent{
		InteractionEvent: discord.InteractionEvent{
			ID:        1,
			Token:     "token",
			ChannelID: channel,
			Data:      &discord.ButtonInteraction{CustomID: id},
		},
	}
}
