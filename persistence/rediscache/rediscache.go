// Package rediscache wraps another persistence.Snapshotter with a
// read-through Redis cache, so export/import round trips during an active
// session avoid re-hitting the durable store on every batch.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/reimu/recommind/persistence"
)

// Config configures a Cache. KeyPrefix defaults to "recommind:snapshot:";
// a zero TTL selects the default of 1 hour, so cached entries always
// expire.
type Config struct {
	KeyPrefix string
	TTL       time.Duration
}

func (c Config) withDefaults() Config {
	if c.KeyPrefix == "" {
		c.KeyPrefix = "recommind:snapshot:"
	}
	if c.TTL == 0 {
		c.TTL = time.Hour
	}
	return c
}

// Cache is a persistence.Snapshotter that serves Load from Redis when
// present, falling back to and populating from an underlying store
// otherwise. Save and Delete always write through to both.
type Cache struct {
	client    *redis.Client
	backing   persistence.Snapshotter
	keyPrefix string
	ttl       time.Duration
}

// New wraps backing with a Redis read-through cache.
func New(client *redis.Client, backing persistence.Snapshotter, cfg Config) *Cache {
	cfg = cfg.withDefaults()
	return &Cache{client: client, backing: backing, keyPrefix: cfg.KeyPrefix, ttl: cfg.TTL}
}

var _ persistence.Snapshotter = (*Cache)(nil)

func (c *Cache) key(learnerID string) string {
	return c.keyPrefix + learnerID
}

func (c *Cache) Save(ctx context.Context, r persistence.Record) error {
	if err := c.backing.Save(ctx, r); err != nil {
		return err
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("rediscache: marshaling record: %w", err)
	}
	if err := c.client.Set(ctx, c.key(r.LearnerID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("rediscache: caching snapshot: %w", err)
	}
	return nil
}

func (c *Cache) Load(ctx context.Context, learnerID string) (persistence.Record, bool, error) {
	payload, err := c.client.Get(ctx, c.key(learnerID)).Bytes()
	if err == nil {
		var r persistence.Record
		if err := json.Unmarshal(payload, &r); err != nil {
			return persistence.Record{}, false, fmt.Errorf("rediscache: unmarshaling cached snapshot: %w", err)
		}
		return r, true, nil
	}
	if !errors.Is(err, redis.Nil) {
		return persistence.Record{}, false, fmt.Errorf("rediscache: reading cache: %w", err)
	}

	r, found, err := c.backing.Load(ctx, learnerID)
	if err != nil || !found {
		return r, found, err
	}
	payload, marshalErr := json.Marshal(r)
	if marshalErr == nil {
		_ = c.client.Set(ctx, c.key(learnerID), payload, c.ttl).Err()
	}
	return r, true, nil
}

func (c *Cache) Delete(ctx context.Context, learnerID string) error {
	if err := c.backing.Delete(ctx, learnerID); err != nil {
		return err
	}
	if err := c.client.Del(ctx, c.key(learnerID)).Err(); err != nil {
		return fmt.Errorf("rediscache: evicting snapshot: %w", err)
	}
	return nil
}

func (c *Cache) List(ctx context.Context) ([]string, error) {
	return c.backing.List(ctx)
}
