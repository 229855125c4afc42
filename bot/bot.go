package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/api/cmdroute"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/state"
	"github.com/knadh/koanf/v2"
	"github.com/nameless-bot/nameless/store"
	"go.uber.org/zap"
)

type Bot struct {
	Config    *koanf.Koanf
	State     *state.State
	Store     store.Store
	Log       *zap.SugaredLogger
	StartTime time.Time

	router   *cmdroute.Router
	commands []api.CreateCommandData
	stop     context.CancelFunc
}

func New(log *zap.SugaredLogger, config *koanf.Koanf, st store.Store) *Bot {
	var (
		r = cmdroute.NewRouter()
		s = state.New("Bot " + config.String("bot.token"))
	)

	s.AddIntents(gateway.IntentGuilds |
		gateway.IntentGuildMessages |
		gateway.IntentMessageContent,
	)

	return &Bot{
		Config:    config,
		State:     s,
		Store:     st,
		Log:       log,
		StartTime: time.Now(),

		router:   r,
		commands: make([]api.CreateCommandData, 0),
	}
}

func (b *Bot) AddCommand(f func(b *Bot) (command api.CreateCommandData, handler cmdroute.CommandHandlerFunc)) {
	cmd, handler := f(b)

	b.commands = append(b.commands, cmd)
	b.router.AddFunc(cmd.Name, handler)
}

// AddCommandGroup registers a command whose subcommands route to
// separate handlers.
func (b *Bot) AddCommandGroup(f func(b *Bot) (command api.CreateCommandData, handlers map[string]cmdroute.CommandHandlerFunc)) {
	cmd, handlers := f(b)

	b.commands = append(b.commands, cmd)
	b.router.Sub(cmd.Name, func(r *cmdroute.Router) {
		for name, handler := range handlers {
			r.AddFunc(name, handler)
		}
	})
}

func (b *Bot) AddMiddleware(mw cmdroute.Middleware) {
	b.router.Use(mw)
}

func (b *Bot) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	b.stop = cancel

	b.State.AddInteractionHandler(b.router)

	if err := cmdroute.OverwriteCommands(b.State, b.commands); err != nil {
		return fmt.Errorf("failed to overwrite commands: %w", err)
	}

	if err := b.State.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	return nil
}

// Shutdown disconnects the gateway by cancelling the Start context.
func (b *Bot) Shutdown() {
	if b.stop != nil {
		b.stop()
	}
}
