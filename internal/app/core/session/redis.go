package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores sessions as JSON values that expire with the session.
type Redis struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb, prefix: "wardwatch:session:", now: time.Now}
}

func (r *Redis) key(id string) string { return r.prefix + id }

func (r *Redis) Save(ctx context.Context, s *Session) error {
	ttl := time.Duration(0)
	if !s.ExpiresAt.IsZero() {
		if ttl = s.ExpiresAt.Sub(r.now()); ttl <= 0 {
			return r.rdb.Del(ctx, r.key(s.ID)).Err()
		}
	}
	b, err := json.Marshal(toRecord(s))
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.key(s.ID), b, ttl).Err()
}

func (r *Redis) Load(ctx context.Context, id string) (*Session, error) {
	b, err := r.rdb.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	var rec record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	return rec.session(), nil
}

func (r *Redis) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, r.key(id)).Err()
}
