// Package db implements store.Store on top of GORM with the pure-Go
// SQLite driver.
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/nameless-bot/nameless/store"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const queryTimeout = 15 * time.Second

type DB struct {
	*guildStore
	*roomStore
	*connectionStore
	*messageStore

	db *gorm.DB
}

func New(path string) (*DB, error) {
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	gdb.Exec("PRAGMA journal_mode=WAL;")
	gdb.Exec("PRAGMA foreign_keys=ON;")
	gdb.Exec("PRAGMA busy_timeout=5000;")

	return &DB{
		guildStore:      &guildStore{db: gdb},
		roomStore:       &roomStore{db: gdb},
		connectionStore: &connectionStore{db: gdb},
		messageStore:    &messageStore{db: gdb},
		db:              gdb,
	}, nil
}

func (d *DB) Init(ctx context.Context) error {
	return d.db.WithContext(ctx).AutoMigrate(
		&store.Guild{},
		&store.Room{},
		&store.Connection{},
		&store.MessageMapping{},
	)
}

func (d *DB) Close(_ context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// isDuplicate recognizes unique-index violations. The driver does not
// translate every constraint error, so the raw SQLite message is checked
// as well.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}
