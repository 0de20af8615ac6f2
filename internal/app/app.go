package app

import (
	"errors"
	"fmt"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"

	"github.com/tgienger/kanban/internal/config"
	"github.com/tgienger/kanban/internal/db"
	"github.com/tgienger/kanban/internal/store"
)

// App owns the stores for one session: construct, load or seed, serve mutations,
// then Close to flush pending writes.
type App struct {
	Config *config.Config
	Log    zerolog.Logger
	DB     *db.DB // nil when running without a database
	// Storage backs every store; it is DB unless running ephemeral
	Storage store.Storage

	Tasks *store.TaskStore
	Chat  *store.ChatStore
	Lists *store.ListStore
}

// ReadConfig reads configuration from the environment
func ReadConfig() (*config.Config, error) {
	cfg, err := config.NewEnvReader().Read()
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

// New opens the database named by cfg and loads every store from it
func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	database, err := db.New(cfg.DBPath())
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", database.Path()).Msg("opened database")

	a := NewWithStorage(cfg, log, database)
	a.DB = database
	return a, nil
}

// NewWithStorage loads every store from storage
func NewWithStorage(cfg *config.Config, log zerolog.Logger, storage store.Storage) *App {
	opts := []store.Option{store.WithLogger(log)}
	return &App{
		Config:  cfg,
		Log:     log,
		Storage: storage,
		Tasks:   store.NewTaskStore(storage, opts...),
		Chat:    store.NewChatStore(storage, opts...),
		Lists:   store.NewListStore(storage, opts...),
	}
}

// Flush retries any save that failed during the session
func (a *App) Flush() error {
	return errors.Join(a.Tasks.Flush(), a.Chat.Flush(), a.Lists.Flush())
}

// Close flushes the stores and closes the database
func (a *App) Close() error {
	err := a.Flush()
	if err != nil {
		a.Log.Error().Err(err).Msg("flush on shutdown failed")
	}
	if a.DB != nil {
		err = errors.Join(err, a.DB.Close())
	}
	return err
}
