package credit

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const (
	balanceKeyPrefix = "credits:"
	eventKeyPrefix   = "credits:event:"
)

// deductScript 余额大于 0 时减 1，否则返回 -1
var deductScript = redis.NewScript(`
local v = tonumber(redis.call("GET", KEYS[1]) or "0")
if v <= 0 then
  return -1
end
return redis.call("DECR", KEYS[1])
`)

// RedisStore Redis 积分存储
type RedisStore struct {
	client redis.Cmdable
}

// NewRedisStore 创建 Redis 积分存储
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func balanceKey(userID string) string {
	return balanceKeyPrefix + userID
}

func (s *RedisStore) Balance(ctx context.Context, userID string) (int, bool, error) {
	v, err := s.client.Get(ctx, balanceKey(userID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func (s *RedisStore) Ensure(ctx context.Context, userID string, initial int) (int, error) {
	key := balanceKey(userID)
	if err := s.client.SetNX(ctx, key, initial, 0).Err(); err != nil {
		return 0, err
	}
	return s.client.Get(ctx, key).Int()
}

func (s *RedisStore) Deduct(ctx context.Context, userID string) (int, error) {
	v, err := deductScript.Run(ctx, s.client, []string{balanceKey(userID)}).Int()
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, ErrInsufficientCredits
	}
	return v, nil
}

func (s *RedisStore) Add(ctx context.Context, userID string, amount int) (int, error) {
	v, err := s.client.IncrBy(ctx, balanceKey(userID), int64(amount)).Result()
	return int(v), err
}

func (s *RedisStore) MarkEvent(ctx context.Context, eventID string) (bool, error) {
	return s.client.SetNX(ctx, eventKeyPrefix+eventID, 1, eventRetention).Result()
}
