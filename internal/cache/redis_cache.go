package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"github.com/pasos-retail/api/internal/rollup"
)

type RedisResumeCache struct {
	client *redis.Client
}

func NewRedisResumeCache(addr, password string, db int) *RedisResumeCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisResumeCache{client: client}
}

func (c *RedisResumeCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisResumeCache) Close() error {
	return c.client.Close()
}

func resumeKey(storeID uuid.UUID, day string) string {
	return fmt.Sprintf("resume:%s:%s", storeID, day)
}

func (c *RedisResumeCache) Get(ctx context.Context, storeID uuid.UUID, day string) (*rollup.Summary, bool, error) {
	val, err := c.client.Get(ctx, resumeKey(storeID, day)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var resume rollup.Summary
	if err := json.Unmarshal([]byte(val), &resume); err != nil {
		return nil, false, err
	}
	return &resume, true, nil
}

func (c *RedisResumeCache) Set(ctx context.Context, storeID uuid.UUID, day string, resume *rollup.Summary, ttl time.Duration) error {
	if resume == nil {
		return nil
	}
	payload, err := json.Marshal(resume)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, resumeKey(storeID, day), payload, ttl).Err()
}
