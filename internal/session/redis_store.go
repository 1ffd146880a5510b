package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the pair under two keys sharing a prefix. Both keys are
// written in one MULTI/EXEC and removed in one DEL.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) accessKey() string  { return s.prefix + KeyAccessToken }
func (s *RedisStore) refreshKey() string { return s.prefix + KeyRefreshToken }

func (s *RedisStore) Load(ctx context.Context) (Session, error) {
	values, err := s.client.MGet(ctx, s.accessKey(), s.refreshKey()).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Session{}, fmt.Errorf("load session from redis: %w", err)
	}

	var sess Session
	if len(values) == 2 {
		sess.AccessToken, _ = values[0].(string)
		sess.RefreshToken, _ = values[1].(string)
	}
	return sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess Session) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.accessKey(), sess.AccessToken, 0)
		pipe.Set(ctx, s.refreshKey(), sess.RefreshToken, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session to redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.accessKey(), s.refreshKey()).Err(); err != nil {
		return fmt.Errorf("clear session in redis: %w", err)
	}
	return nil
}
