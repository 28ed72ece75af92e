package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	snapshotKey    = "catalog:snapshot"
	snapshotVerKey = "catalog:snapshot:version"
)

// ErrCacheMiss reports an absent or stale snapshot.
var ErrCacheMiss = errors.New("catalog: snapshot cache miss")

// Cache stores the preloaded catalog snapshot in Redis with versioned keys,
// so invalidation is a version bump rather than a delete race.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the snapshot cache.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) version(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, snapshotVerKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.Set(ctx, snapshotVerKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, snapshotVerKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

func (c *Cache) key(ctx context.Context) (string, error) {
	ver, err := c.version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", snapshotKey, ver), nil
}

// Store persists a snapshot under the current version.
func (c *Cache) Store(ctx context.Context, snap *Snapshot) error {
	if c == nil || c.client == nil {
		return nil
	}
	key, err := c.key(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

// Load retrieves the current snapshot or ErrCacheMiss.
func (c *Cache) Load(ctx context.Context) (*Snapshot, error) {
	if c == nil || c.client == nil {
		return nil, ErrCacheMiss
	}
	key, err := c.key(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Invalidate bumps the snapshot version; old entries expire by TTL.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, snapshotVerKey).Err()
}
