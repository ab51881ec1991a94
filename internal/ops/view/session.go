package view

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound 会话不存在或已过期
var ErrSessionNotFound = errors.New("view session not found")

// SessionStore 按key保存序列化后的控制器状态
type SessionStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, state []byte) error
}

// LoadState 读取并反序列化，会话不存在时返回零值状态
func LoadState[T any](ctx context.Context, store SessionStore, key string) (T, error) {
	var state T
	data, err := store.Load(ctx, key)
	if errors.Is(err, ErrSessionNotFound) {
		return state, nil
	}
	if err != nil {
		return state, err
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return state, fmt.Errorf("decode view session %s: %w", key, err)
	}
	return state, nil
}

// SaveState 序列化并保存
func SaveState[T any](ctx context.Context, store SessionStore, key string, state T) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode view session %s: %w", key, err)
	}
	return store.Save(ctx, key, data)
}

// MemorySessions 进程内会话
type MemorySessions struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{data: make(map[string][]byte)}
}

func (m *MemorySessions) Load(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return v, nil
}

func (m *MemorySessions) Save(ctx context.Context, key string, state []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = state
	return nil
}

// RedisSessions Redis会话，带过期时间
type RedisSessions struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisSessions(rdb *redis.Client, ttl time.Duration) *RedisSessions {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &RedisSessions{rdb: rdb, prefix: "smdesk:view:", ttl: ttl}
}

func (s *RedisSessions) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load view session: %w", err)
	}
	return data, nil
}

func (s *RedisSessions) Save(ctx context.Context, key string, state []byte) error {
	if err := s.rdb.Set(ctx, s.prefix+key, state, s.ttl).Err(); err != nil {
		return fmt.Errorf("save view session: %w", err)
	}
	return nil
}
