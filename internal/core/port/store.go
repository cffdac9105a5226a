package port

import (
	"github.com/Rob-Negrete/dura-gas/internal/core/domain"
)

// StateStore persists tank state across restarts. Load returns nil data
// on first run. Implementations must be safe to call from a background
// task goroutine, one call at a time.
type StateStore interface {
	Load() (*domain.TankData, error)
	Save(data domain.TankData) error
	Close() error
}
