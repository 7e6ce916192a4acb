package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ridloal/toy-store-backend/internal/platform/config"
)

// session:{sid} -> Data as JSON
const keySession = "session:%s"

var ErrSessionNotFound = errors.New("session not found")

// Data is the server-side record a session cookie points to.
type Data struct {
	UserID    string    `json:"userId"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type Store interface {
	Save(ctx context.Context, sid string, data Data, ttl time.Duration) error
	Load(ctx context.Context, sid string) (*Data, error)
	Delete(ctx context.Context, sid string) error
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

type redisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) Store {
	return &redisStore{rdb: rdb}
}

func (s *redisStore) Save(ctx context.Context, sid string, data Data, ttl time.Duration) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.rdb.Set(ctx, fmt.Sprintf(keySession, sid), b, ttl).Err()
}

func (s *redisStore) Load(ctx context.Context, sid string) (*Data, error) {
	b, err := s.rdb.Get(ctx, fmt.Sprintf(keySession, sid)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	var d Data
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &d, nil
}

func (s *redisStore) Delete(ctx context.Context, sid string) error {
	return s.rdb.Del(ctx, fmt.Sprintf(keySession, sid)).Err()
}
