package db

import (
	"battlezone/internal/config" // Configuration
	"battlezone/internal/store"  // Persistence layer
	"context"                    // Seeding runs outside any request
)

// OpenStore returns the store selected by cfg.DBDriver. The memory driver
// keeps everything in process and loses it on exit.
func OpenStore(cfg *config.Config) (store.Store, error) {
	if cfg.DBDriver == config.DriverMemory {
		st := store.NewMemoryStore()
		if err := store.SeedGames(context.Background(), st); err != nil {
			return nil, err
		}
		return st, nil
	}
	conn, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	return store.NewGormStore(conn), nil
}
