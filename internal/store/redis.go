package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tinifier/tinifier/internal/shortener"
)

// RedisStore is a Redis implementation of shortener.Store. Each entry lives
// in one hash keyed by its short code. The exists-then-write sequence is not
// transactional across clients, which is acceptable for the single-process
// access model this tool assumes.
type RedisStore struct {
	client *redis.Client
	prefix string // "entry:" + code
}

// NewRedisStore creates a new Redis-backed entry store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "entry:",
	}
}

func (r *RedisStore) Insert(ctx context.Context, code string, e shortener.Entry) (*shortener.Entry, error) {
	key := r.prefix + code

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	if exists > 0 {
		return nil, shortener.ErrExists
	}

	expiresAt := int64(0)
	if e.ExpiresAt != nil {
		expiresAt = e.ExpiresAt.UnixNano()
	}

	err = r.client.HSet(ctx, key, map[string]interface{}{
		"long_url":   e.LongURL,
		"short_url":  e.ShortURL,
		"expires_at": expiresAt,
		"created_at": e.CreatedAt.UnixNano(),
		"author":     e.Author,
	}).Err()
	if err != nil {
		return nil, err
	}

	return &e, nil
}

func (r *RedisStore) Get(ctx context.Context, code string) (*shortener.Entry, error) {
	fields, err := r.client.HGetAll(ctx, r.prefix+code).Result()
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return nil, shortener.ErrNotFound
	}

	return entryFromFields(fields), nil
}

func (r *RedisStore) Remove(ctx context.Context, code string) (*shortener.Entry, error) {
	e, err := r.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := r.client.Del(ctx, r.prefix+code).Err(); err != nil {
		return nil, err
	}

	return e, nil
}

func (r *RedisStore) Contains(ctx context.Context, code string) (bool, error) {
	exists, err := r.client.Exists(ctx, r.prefix+code).Result()
	if err != nil {
		return false, err
	}

	return exists > 0, nil
}

func entryFromFields(fields map[string]string) *shortener.Entry {
	e := &shortener.Entry{
		LongURL:  fields["long_url"],
		ShortURL: fields["short_url"],
		Author:   fields["author"],
	}

	if nanos, err := strconv.ParseInt(fields["created_at"], 10, 64); err == nil {
		e.CreatedAt = time.Unix(0, nanos)
	}

	if nanos, err := strconv.ParseInt(fields["expires_at"], 10, 64); err == nil && nanos > 0 {
		t := time.Unix(0, nanos)
		e.ExpiresAt = &t
	}

	return e
}

// Compile-time check.
var _ shortener.Store = (*RedisStore)(nil)
