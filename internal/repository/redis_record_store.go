package repository

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "learning_dashboard:ledger:"

// RedisRecordStore 账本存放在 Redis 字符串键中，不设置过期时间
type RedisRecordStore struct {
	Redis *redis.Client
}

func NewRedisRecordStore(rdb *redis.Client) *RedisRecordStore {
	return &RedisRecordStore{Redis: rdb}
}

func (s *RedisRecordStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.Redis.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisRecordStore) Set(ctx context.Context, key, value string) error {
	return s.Redis.Set(ctx, redisKeyPrefix+key, value, 0).Err()
}
