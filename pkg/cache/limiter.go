// Package cache wraps Redis for per-key daily request quotas.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/arnavshah/meeting-rotation-api/pkg/config"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const usagePrefix = "usage:"

const counterTTL = 48 * time.Hour

// Limiter counts requests per API key per UTC day. A nil Limiter allows everything.
type Limiter struct {
	rdb    *goredis.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewLimiter connects to Redis and pings it
func NewLimiter(cfg config.RedisConfig, logger *zap.Logger) (*Limiter, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Info("redis connected", zap.String("addr", cfg.Addr))
	return &Limiter{rdb: rdb, logger: logger, now: time.Now}, nil
}

// Key returns the counter key of a key id on the given day
func Key(keyID uint, day time.Time) string {
	return fmt.Sprintf("%s%d:%s", usagePrefix, keyID, day.UTC().Format("2006-01-02"))
}

// Allow increments today's counter of keyID and reports whether it is
// still within limit. limit <= 0 means unlimited.
func (l *Limiter) Allow(ctx context.Context, keyID uint, limit int) (bool, int64, error) {
	if l == nil {
		return true, 0, nil
	}
	key := Key(keyID, l.now())

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, counterTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, 0, fmt.Errorf("count request: %w", err)
	}

	n := incr.Val()
	if limit > 0 && n > int64(limit) {
		return false, n, nil
	}
	return true, n, nil
}

// Close releases the Redis connection
func (l *Limiter) Close() error {
	if l == nil {
		return nil
	}
	return l.rdb.Close()
}
