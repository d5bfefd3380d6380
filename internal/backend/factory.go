package backend

import (
	"fmt"
	"log/slog"

	"courierops/internal/storage"
)

// Config holds what a store needs at creation time.
type Config struct {
	Type         Type
	SQLiteDBPath string
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == TypeSQLite && c.SQLiteDBPath == "" {
		return fmt.Errorf("sqlite backend requires a database path")
	}
	return nil
}

// Factory creates stores from configuration.
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Create builds the configured store. The caller owns Cleanup.
func (f *Factory) Create(cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case TypeSQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		f.logger.Info("Initialized SQLite store", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: repo, Cleanup: repo.Close}, nil

	case TypeMemory:
		store := storage.NewMemoryStore()
		f.logger.Info("Initialized memory store")
		return &Result{Store: store, Cleanup: store.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}
