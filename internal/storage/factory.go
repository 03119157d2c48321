package storage

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/verdict/internal/common"
	"github.com/ternarybob/verdict/internal/interfaces"
	"github.com/ternarybob/verdict/internal/storage/badger"
	"github.com/ternarybob/verdict/internal/storage/memory"
)

// NewStorageManager creates a new storage manager based on config. When the
// Badger store cannot be opened the manager degrades to the in-memory
// fallback so analysis can still run without persistence.
func NewStorageManager(logger arbor.ILogger, config *common.Config) (interfaces.StorageManager, error) {
	switch config.Storage.Type {
	case "memory":
		return memory.NewManager(logger), nil
	case "badger", "":
		manager, err := badger.NewManager(logger, &config.Storage.Badger)
		if err != nil {
			logger.Warn().Err(err).
				Str("path", config.Storage.Badger.Path).
				Msg("Badger store unavailable, falling back to in-memory storage")
			return memory.NewManager(logger), nil
		}
		return manager, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", config.Storage.Type)
	}
}
