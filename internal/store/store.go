// Package store provides the TTL key-value storage backing the JWT
// blacklist and the one-time DingTalk login state. Entries are
// write-once-then-expire; no in-place mutation happens.
package store

import (
	"context"
	"time"

	"github.com/biou/admin-console/internal/config"
	"github.com/biou/admin-console/pkg/logger"
)

// TTLStore is a key-value store whose entries expire after a fixed TTL.
type TTLStore interface {
	// Set stores value under key for ttl. A non-positive ttl is rejected.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns the value and whether the key exists and has not expired.
	Get(ctx context.Context, key string) (string, bool, error)
	// Exists reports whether the key is present and unexpired.
	Exists(ctx context.Context, key string) (bool, error)
	// Consume atomically removes the key, reporting whether it was
	// present and unexpired. At most one caller wins per key.
	Consume(ctx context.Context, key string) (bool, error)
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backing resources.
	Close() error
}

// New selects the store backend from config: Redis when enabled,
// otherwise an in-process store.
func New(cfg *config.RedisConfig) TTLStore {
	if cfg != nil && cfg.Enabled {
		s, err := NewRedisStore(cfg)
		if err != nil {
			logger.Warnf("[Store] Redis unavailable, falling back to in-memory TTL store: %v", err)
			return NewMemoryStore()
		}
		logger.Infof("[Store] Redis TTL store initialized at %s", cfg.Addr)
		return s
	}
	logger.Infof("[Store] In-memory TTL store initialized (Redis disabled)")
	return NewMemoryStore()
}
