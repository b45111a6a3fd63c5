package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-redis/redis/v8"

	"bookingbot/models"
)

const keyPrefix = "session:"

// DefaultTTL is how long an idle session survives in redis.
const DefaultTTL = 24 * time.Hour

// RedisStore keeps sessions in redis with a sliding TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func key(id string) string { return keyPrefix + id }

func (r *RedisStore) GetOrCreate(ctx context.Context, id, seed string) (*models.Session, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}
	data, err := r.rdb.Get(ctx, key(id)).Bytes()
	var s *models.Session
	switch {
	case errors.Is(err, redis.Nil):
		s = models.NewSession(id)
	case err != nil:
		return nil, fmt.Errorf("load session %s: %w", id, err)
	default:
		s = &models.Session{}
		if err := sonic.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("decode session %s: %w", id, err)
		}
	}
	seedPhone(s, seed)
	return s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *models.Session) error {
	if s == nil || s.ID == "" {
		return ErrEmptySessionID
	}
	s.UpdatedAt = time.Now()
	data, err := sonic.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	if err := r.rdb.Set(ctx, key(s.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}
