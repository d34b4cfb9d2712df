package redis_session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mborhani/vizboard/internal/session"
)

type Store struct {
	client *redis.Client
}

func NewRedisSessionStore(addr, password string, db int) session.Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Store{client: rdb}
}

// NewWithClient wraps an existing client, mostly for tests.
func NewWithClient(client *redis.Client) session.Store {
	return &Store{client: client}
}

func stateKey(id string) string { return fmt.Sprintf("session:%s:state", id) }

func (store *Store) EnsureSession(id string, ttl time.Duration) (session.Session, error) {
	ctx := context.Background()
	if id != "" {
		key := stateKey(id)
		exists, err := store.client.Exists(ctx, key).Result()
		if err == nil && exists == 1 {
			_ = store.client.Expire(ctx, key, ttl).Err()
			return &Session{client: store.client, id: id, ttl: ttl}, nil
		}
	}
	sess := &Session{client: store.client, id: uuid.NewString(), ttl: ttl}
	initial, _ := json.Marshal(session.State{ChartType: "scatter"})
	if err := store.client.Set(ctx, stateKey(sess.id), initial, ttl).Err(); err != nil {
		return nil, fmt.Errorf("redis session init: %w", err)
	}
	return sess, nil
}

func (store *Store) GetSession(id string) (session.Session, error) {
	ctx := context.Background()
	exists, err := store.client.Exists(ctx, stateKey(id)).Result()
	if err != nil || exists == 0 {
		return nil, nil
	}
	return &Session{client: store.client, id: id}, nil
}

type Session struct {
	client *redis.Client
	id     string
	ttl    time.Duration
}

func (s *Session) ID() string { return s.id }

func (s *Session) Expire(ttl time.Duration) {
	s.ttl = ttl
	_ = s.client.Expire(context.Background(), stateKey(s.id), ttl).Err()
}

func (s *Session) Get() (session.State, error) {
	val, err := s.client.Get(context.Background(), stateKey(s.id)).Result()
	if err == redis.Nil {
		return session.State{}, nil
	}
	if err != nil {
		return session.State{}, fmt.Errorf("redis session get: %w", err)
	}
	var st session.State
	if err := json.Unmarshal([]byte(val), &st); err != nil {
		return session.State{}, fmt.Errorf("redis session decode: %w", err)
	}
	return st, nil
}

func (s *Session) Set(st session.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("redis session encode: %w", err)
	}
	ttl := s.ttl
	if ttl <= 0 {
		ttl = redis.KeepTTL
	}
	if err := s.client.Set(context.Background(), stateKey(s.id), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis session set: %w", err)
	}
	return nil
}
