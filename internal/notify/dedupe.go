package notify

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper remembers publish keys for a while. FirstSeen returns true only
// for the first caller of a key within ttl.
type Deduper interface {
	FirstSeen(ctx context.Context, key string, ttl time.Duration) bool
}

type MemoryDeduper struct {
	mu        sync.Mutex
	seen      map[string]time.Time
	lastSweep time.Time
	clock     func() time.Time
}

func NewMemoryDeduper() *MemoryDeduper {
	return &MemoryDeduper{seen: make(map[string]time.Time), clock: time.Now}
}

func (d *MemoryDeduper) FirstSeen(_ context.Context, key string, ttl time.Duration) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.clock()
	if now.Sub(d.lastSweep) > ttl {
		for k, expiresAt := range d.seen {
			if !now.Before(expiresAt) {
				delete(d.seen, k)
			}
		}
		d.lastSweep = now
	}
	if expiresAt, ok := d.seen[key]; ok && now.Before(expiresAt) {
		return false
	}
	d.seen[key] = now.Add(ttl)
	return true
}

type RedisDeduper struct {
	client *redis.Client
	prefix string
}

func NewRedisDeduper(client *redis.Client, prefix string) *RedisDeduper {
	if client == nil {
		return nil
	}
	return &RedisDeduper{client: client, prefix: prefix}
}

// FirstSeen fails open: if Redis is unreachable the signal is published and
// the worst case is one extra refetch on the client.
func (d *RedisDeduper) FirstSeen(ctx context.Context, key string, ttl time.Duration) bool {
	if d == nil || d.client == nil {
		return true
	}
	redisKey := key
	if d.prefix != "" {
		redisKey = d.prefix + ":" + key
	}
	ok, err := d.client.SetNX(ctx, redisKey, 1, ttl).Result()
	if err != nil {
		return true
	}
	return ok
}
