package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "sgpa:extract:"

// RedisCache is the redis-backed Cache; entries expire after TTL.
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: client, TTL: ttl}
}

type redisEntry struct {
	Text      string    `json:"text"`
	Backend   string    `json:"backend"`
	CreatedAt time.Time `json:"created_at"`
}

func redisKey(imageHash, scope string) string {
	return redisPrefix + scope + ":" + imageHash
}

func (c *RedisCache) Find(ctx context.Context, imageHash, scope string) (Entry, error) {
	raw, err := c.Client.Get(ctx, redisKey(imageHash, scope)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}
	var re redisEntry
	if err := json.Unmarshal(raw, &re); err != nil {
		// a broken entry is treated as missing
		return Entry{}, ErrNotFound
	}
	return Entry{Text: re.Text, Backend: re.Backend, CreatedAt: re.CreatedAt}, nil
}

func (c *RedisCache) Upsert(ctx context.Context, imageHash, scope string, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	b, err := json.Marshal(redisEntry{Text: e.Text, Backend: e.Backend, CreatedAt: e.CreatedAt})
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, redisKey(imageHash, scope), b, c.TTL).Err()
}
