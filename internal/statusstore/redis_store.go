package statusstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taoyao-code/mcp-status/internal/healthpoll"
)

// RedisStore 以 JSON 形式保存快照，TTL 过期后视为无快照（写入方已退出）
type RedisStore struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

// NewRedisStore 创建 Redis 存储；ttl<=0 表示不过期
func NewRedisStore(client redis.Cmdable, key string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, key: key, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, st healthpoll.Status) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, string(data), s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (healthpoll.Status, error) {
	data, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return healthpoll.Status{}, ErrNotFound
	}
	if err != nil {
		return healthpoll.Status{}, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	var st healthpoll.Status
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return healthpoll.Status{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return st, nil
}
