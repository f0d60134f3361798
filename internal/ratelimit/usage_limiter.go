package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/boxtrack/boxtrack/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const keyUsageRecordUser = "usage:record:user:%s"

// UsageRecordLimiter throttles usage recording per user. A nil limiter (rate
// limiting disabled) allows everything.
type UsageRecordLimiter struct {
	enabled bool

	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewUsageRecordLimiter(cfg config.Config) (*UsageRecordLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.UsageRate <= 0 || limitCfg.UsageBurst <= 0 {
		return nil, errors.New("usage rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &UsageRecordLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    limitCfg.UsageRate,
		burst:   limitCfg.UsageBurst,
	}, nil
}

func (l *UsageRecordLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *UsageRecordLimiter) AllowUser(ctx context.Context, userID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyUsageRecordUser, strings.TrimSpace(userID)), l.rate, l.burst)
}
