package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Manager is the TTL view cache used to accelerate list endpoints. Every
// operation is best-effort: a cache failure is logged and the caller falls
// through to the authoritative store.
type Manager interface {
	Get(ctx context.Context, key string, out interface{}) bool
	Set(ctx context.Context, key string, value interface{})
	ClearPattern(ctx context.Context, pattern string)
}

type redisManager struct {
	logger *logrus.Logger
	client *redis.Client
	ttl    time.Duration
}

func NewRedisManager(logger *logrus.Logger, client *redis.Client, ttl time.Duration) Manager {
	return &redisManager{
		logger: logger,
		client: client,
		ttl:    ttl,
	}
}

func (m *redisManager) Get(ctx context.Context, key string, out interface{}) bool {
	value, err := m.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		m.logger.WithContext(ctx).WithError(err).WithField("key", key).Warn("cache get failed")
		return false
	}

	if err := json.Unmarshal([]byte(value), out); err != nil {
		m.logger.WithContext(ctx).WithError(err).WithField("key", key).Warn("cache entry is not decodable")
		return false
	}

	return true
}

func (m *redisManager) Set(ctx context.Context, key string, value interface{}) {
	buff, err := json.Marshal(value)
	if err != nil {
		m.logger.WithContext(ctx).WithError(err).WithField("key", key).Warn("cache set failed")
		return
	}

	if err := m.client.Set(ctx, key, buff, m.ttl).Err(); err != nil {
		m.logger.WithContext(ctx).WithError(err).WithField("key", key).Warn("cache set failed")
	}
}

// ClearPattern drops every key matching the pattern. SCAN keeps the
// invalidation from blocking redis on large keyspaces.
func (m *redisManager) ClearPattern(ctx context.Context, pattern string) {
	iter := m.client.Scan(ctx, 0, pattern, 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		m.logger.WithContext(ctx).WithError(err).WithField("pattern", pattern).Warn("cache invalidation scan failed")
		return
	}

	if len(keys) == 0 {
		return
	}

	if err := m.client.Del(ctx, keys...).Err(); err != nil {
		m.logger.WithContext(ctx).WithError(err).WithField("pattern", pattern).Warn("cache invalidation failed")
	}
}
