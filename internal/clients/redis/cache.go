package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ariabot/aria-backend/internal/pkg/logger"
	"github.com/ariabot/aria-backend/internal/utils"
)

// Cache is a thin optional layer over redis: last-sync fast paths for the
// monitoring scheduler and short-lived session context. A nil *Cache is valid
// and means "store only".
type Cache struct {
	rdb *goredis.Client
	log *logger.Logger
}

// New returns nil (no error) when REDIS_ADDR is unset: redis is optional.
func New(log *logger.Logger) (*Cache, error) {
	addr := utils.GetEnv("REDIS_ADDR", "", log)
	if addr == "" {
		return nil, nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: utils.GetEnv("REDIS_PASSWORD", "", nil),
		DB:       utils.GetEnvAsInt("REDIS_DB", 0, log),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Cache{rdb: rdb, log: log.With("service", "RedisCache")}, nil
}

func syncKey(userID, source string) string {
	return "monitor:last_sync:" + userID + ":" + source
}

// GetLastSync returns the cached sync timestamp, or zero when absent or when
// the cache is disabled.
func (c *Cache) GetLastSync(ctx context.Context, userID, source string) time.Time {
	if c == nil {
		return time.Time{}
	}
	raw, err := c.rdb.Get(ctx, syncKey(userID, source)).Result()
	if err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (c *Cache) SetLastSync(ctx context.Context, userID, source string, at time.Time) {
	if c == nil {
		return
	}
	if err := c.rdb.Set(ctx, syncKey(userID, source), at.UTC().Format(time.RFC3339), 7*24*time.Hour).Err(); err != nil {
		c.log.Warn("Failed to cache last sync", "error", err)
	}
}

func sessionKey(sessionID string) string {
	return "chat:session:" + sessionID
}

// GetSessionContext and SetSessionContext cache the rendered context block
// for a chat session between turns.
func (c *Cache) GetSessionContext(ctx context.Context, sessionID string) string {
	if c == nil {
		return ""
	}
	raw, err := c.rdb.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return ""
	}
	return raw
}

func (c *Cache) SetSessionContext(ctx context.Context, sessionID, rendered string) {
	if c == nil {
		return
	}
	if err := c.rdb.Set(ctx, sessionKey(sessionID), rendered, time.Hour).Err(); err != nil {
		c.log.Warn("Failed to cache session context", "error", err)
	}
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
