package snapshotstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the snapshot in a single Redis hash (field = module id).
type RedisStore struct {
	client *redis.Client
	key    string
}

// OpenRedis connects to url and verifies the server answers PING.
func OpenRedis(ctx context.Context, url, key string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(client, key), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

// Backend identifies the store in logs and health output.
func (s *RedisStore) Backend() string {
	return "redis"
}

// Close closes the client.
func (s *RedisStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Ping verifies the server is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// List returns every record ordered by id.
func (s *RedisStore) List(ctx context.Context) ([]Record, error) {
	values, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	records := make([]Record, 0, len(values))
	for id, data := range values {
		records = append(records, Record{ID: id, Data: []byte(data)})
	}
	sortRecords(records)
	return records, nil
}

// Count returns the number of stored records.
func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.HLen(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return int(n), nil
}

// ReplaceAll swaps the whole snapshot inside MULTI/EXEC.
func (s *RedisStore) ReplaceAll(ctx context.Context, records []Record) error {
	batch, err := normalizeBatch(records)
	if err != nil {
		return err
	}
	fields := make(map[string]any, len(batch))
	for _, record := range batch {
		fields[record.ID] = string(record.Data)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(fields) > 0 {
			pipe.HSet(ctx, s.key, fields)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace records: %w", err)
	}
	return nil
}

// Upsert inserts or overwrites one record.
func (s *RedisStore) Upsert(ctx context.Context, record Record) error {
	if err := ValidateRecord(record); err != nil {
		return err
	}
	if err := s.client.HSet(ctx, s.key, record.ID, string(record.Data)).Err(); err != nil {
		return fmt.Errorf("upsert record %s: %w", record.ID, err)
	}
	return nil
}

// Reset deletes the snapshot and returns how many records it held.
func (s *RedisStore) Reset(ctx context.Context) (int64, error) {
	var count *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		count = pipe.HLen(ctx, s.key)
		pipe.Del(ctx, s.key)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("reset records: %w", err)
	}
	return count.Val(), nil
}
