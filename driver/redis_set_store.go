package driver

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"catalog-engine/domain"
)

// RedisSetStore is the Redis-backed set store. Redis set commands are
// atomic per key, which is the only mutation guarantee the engine relies
// on. Every call is bounded by the configured timeout.
type RedisSetStore struct {
	client  *redis.Client
	timeout time.Duration
}

func NewRedisSetStore(url string, timeout time.Duration) (*RedisSetStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, &domain.StoreError{Op: "NewRedisSetStore", Err: err.Error()}
	}
	return &RedisSetStore{client: redis.NewClient(opts), timeout: timeout}, nil
}

// Ping verifies the backend is reachable.
func (s *RedisSetStore) Ping(ctx context.Context) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.client.Ping(ctx).Err(); err != nil {
		return &domain.StoreError{Op: "Ping", Err: err.Error()}
	}
	return nil
}

func (s *RedisSetStore) Close() error {
	return s.client.Close()
}

func (s *RedisSetStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *RedisSetStore) AddMembers(ctx context.Context, key string, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	if err := s.client.SAdd(ctx, key, members...).Err(); err != nil {
		return &domain.StoreError{Op: "AddMembers", Err: err.Error()}
	}
	return nil
}

func (s *RedisSetStore) UnionStore(ctx context.Context, dest string, ttl time.Duration, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	count, err := s.client.SUnionStore(ctx, dest, keys...).Result()
	if err != nil {
		return 0, &domain.StoreError{Op: "UnionStore", Err: err.Error()}
	}
	if err := s.client.Expire(ctx, dest, ttl).Err(); err != nil {
		return 0, &domain.StoreError{Op: "UnionStore", Err: err.Error()}
	}
	return count, nil
}

func (s *RedisSetStore) InterStore(ctx context.Context, dest string, ttl time.Duration, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	count, err := s.client.SInterStore(ctx, dest, keys...).Result()
	if err != nil {
		return 0, &domain.StoreError{Op: "InterStore", Err: err.Error()}
	}
	if err := s.client.Expire(ctx, dest, ttl).Err(); err != nil {
		return 0, &domain.StoreError{Op: "InterStore", Err: err.Error()}
	}
	return count, nil
}

func (s *RedisSetStore) Cardinality(ctx context.Context, key string) (int64, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	count, err := s.client.SCard(ctx, key).Result()
	if err != nil {
		return 0, &domain.StoreError{Op: "Cardinality", Err: err.Error()}
	}
	return count, nil
}

func (s *RedisSetStore) Members(ctx context.Context, key string) ([]int64, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	raw, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, &domain.StoreError{Op: "Members", Err: err.Error()}
	}

	ids := make([]int64, 0, len(raw))
	for _, member := range raw {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			return nil, &domain.StoreError{Op: "Members", Err: "non-integer member " + member + " in " + key}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *RedisSetStore) AddValues(ctx context.Context, key string, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	members := make([]interface{}, len(values))
	for i, v := range values {
		members[i] = v
	}
	if err := s.client.SAdd(ctx, key, members...).Err(); err != nil {
		return &domain.StoreError{Op: "AddValues", Err: err.Error()}
	}
	return nil
}

func (s *RedisSetStore) Values(ctx context.Context, key string) ([]string, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	values, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, &domain.StoreError{Op: "Values", Err: err.Error()}
	}
	return values, nil
}

func (s *RedisSetStore) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, &domain.StoreError{Op: "Exists", Err: err.Error()}
	}
	return n > 0, nil
}

func (s *RedisSetStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
		return &domain.StoreError{Op: "Expire", Err: err.Error()}
	}
	return nil
}

func (s *RedisSetStore) GetValue(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	value, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, &domain.StoreError{Op: "GetValue", Err: err.Error()}
	}
	return value, true, nil
}

func (s *RedisSetStore) SetValue(ctx context.Context, key, value string, ttl time.Duration) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return &domain.StoreError{Op: "SetValue", Err: err.Error()}
	}
	return nil
}

func (s *RedisSetStore) DeleteByPattern(ctx context.Context, pattern string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	iter := s.client.Scan(ctx, 0, pattern, 500).Iterator()
	batch := make([]string, 0, 500)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := s.client.Del(ctx, batch...).Err(); err != nil {
				return &domain.StoreError{Op: "DeleteByPattern", Err: err.Error()}
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return &domain.StoreError{Op: "DeleteByPattern", Err: err.Error()}
	}
	if len(batch) > 0 {
		if err := s.client.Del(ctx, batch...).Err(); err != nil {
			return &domain.StoreError{Op: "DeleteByPattern", Err: err.Error()}
		}
	}
	return nil
}
