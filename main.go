package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nameless-bot/nameless/arikawautils/middlewares"
	"github.com/nameless-bot/nameless/bot"
	"github.com/nameless-bot/nameless/commands"
	"github.com/nameless-bot/nameless/crosschat"
	"github.com/nameless-bot/nameless/ctxzap"
	"github.com/nameless-bot/nameless/store/db"

	"github.com/diamondburned/arikawa/v3/api/cmdroute"
	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

var config = koanf.NewWithConf(koanf.Conf{
	Delim:       ".",
	StrictMerge: true,
})

func main() {
	if err := initializeConfig(); err != nil {
		stdlog.Fatalf("failed to initialize config: %v", err)
	}

	log, err := initializeLogger()
	if err != nil {
		stdlog.Fatalf("failed to initialize logger: %v", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx = ctxzap.ToContext(ctx, log)

	dbPath := config.String("db.path")
	if dbPath == "" {
		dbPath = "nameless.db"
	}

	st, err := db.New(dbPath)
	if err != nil {
		log.With("error", err).Fatal("failed to open the database")
	}

	if err := st.Init(ctx); err != nil {
		log.With("error", err).Fatal("failed to initialize the database")
	}
	defer st.Close(context.Background())

	b := bot.New(log, config, st)

	chat, err := crosschat.NewService(ctx, crosschat.Config{
		Transport:      b.State,
		Events:         b.State,
		Store:          st,
		Log:            log,
		ConfirmTimeout: time.Duration(config.Int64("crosschat.confirm_timeout")) * time.Second,
		Retention:      mappingRetention(),
	})
	if err != nil {
		log.With("error", err).Fatal("failed to initialize crosschat")
	}

	b.AddMiddleware(middlewares.CommandLog(log))
	b.AddMiddleware(cmdroute.Deferrable(b.State, cmdroute.DeferOpts{}))
	commands.RegisterCommands(b, chat)

	b.State.AddHandler(chat.HandleMessageCreate)
	b.State.AddHandler(chat.HandleMessageUpdate)
	b.State.AddHandler(chat.HandleMessageDelete)

	go chat.RunJanitor(ctx)

	if err := b.Start(ctx); err != nil {
		log.With("error", err).Fatal("failed to start the bot")
	}
}

func initializeLogger() (*zap.SugaredLogger, error) {
	if config.Bool("dev.mode") {
		log, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}

		return log.Sugar(), nil
	}

	log, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	return log.Sugar(), nil
}

func initializeConfig() error {
	// Load JSON config
	jsonPath := "config.json"
	if fileExists(jsonPath) {
		if err := config.Load(file.Provider(jsonPath), json.Parser()); err != nil {
			return err
		}
	}

	// Load environment variables
	err := config.Load(env.Provider("NAMELESS_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "NAMELESS_")), "_", ".", -1)
	}), nil)
	if err != nil {
		return err
	}

	// Load .env file
	dotenvPath := ".env"
	if fileExists(dotenvPath) {
		dotenvParser := dotenv.ParserEnv("NAMELESS_", ".", func(s string) string {
			return strings.Replace(strings.ToLower(
				strings.TrimPrefix(s, "NAMELESS_")), "_", ".", -1)
		})

		if err := config.Load(file.Provider(".env"), dotenvParser); err != nil {
			return err
		}
	}

	return nil
}

func mappingRetention() time.Duration {
	days := int64(30)
	if config.Exists("crosschat.retention_days") {
		days = config.Int64("crosschat.retention_days")
	}

	if days <= 0 {
		return 0
	}

	return time.Duration(days) * 24 * time.Hour
}

func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
