package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/task-management/internal"
	goredis "github.com/redis/go-redis/v9"
)

const blacklistPrefix = "token:blacklist:"

type commander interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Exists(ctx context.Context, keys ...string) *goredis.IntCmd
}

// Blacklist stores revoked token ids as expiring keys.
type Blacklist struct {
	client commander
}

func NewBlacklist(client commander) *Blacklist {
	return &Blacklist{client: client}
}

func NewClient(cfg internal.RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func (b *Blacklist) Add(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, blacklistPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

func (b *Blacklist) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return n > 0, nil
}
