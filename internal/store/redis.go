package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/i474232898/user-geo-service/internal/user"
)

const keyPrefix = "user:"

// RedisStore implements user.Store on top of Redis, holding each record as a
// JSON document under the "user:<id>" key. Redis gives the read-after-write
// consistency the reconciler relies on.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(addr, password string, db int) *RedisStore {
	return &RedisStore{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (s *RedisStore) Put(ctx context.Context, rec user.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("serialize record %s: %w", rec.ID, err)
	}
	return s.rdb.Set(ctx, keyPrefix+rec.ID, data, 0).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) (user.Record, error) {
	data, err := s.rdb.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return user.Record{}, user.ErrNotFound
	}
	if err != nil {
		return user.Record{}, err
	}

	var rec user.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return user.Record{}, fmt.Errorf("decode record %s: %w", id, err)
	}
	return rec, nil
}

func (s *RedisStore) List(ctx context.Context) (map[string]user.Record, error) {
	out := make(map[string]user.Record)

	iter := s.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := s.rdb.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue // deleted between scan and get
		}
		if err != nil {
			return nil, err
		}

		var rec user.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("decode record at %s: %w", iter.Val(), err)
		}
		out[rec.ID] = rec
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.rdb.Del(ctx, keyPrefix+id).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

// Ping verifies the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
