// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/riadevigo/buoyplanner/internal/config"
	"github.com/riadevigo/buoyplanner/internal/database"
	"github.com/rs/zerolog"
)

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, log zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case "sqlite":
		return NewSQLite(database.NewManager(log)), nil
	case "memory", "":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
