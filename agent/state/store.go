package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"

	"github.com/tanpawarit/restaurant-assistant/pkg/metrics"
)

const (
	defaultStoreKeyPrefix = "restaurant:conversation:"
	defaultStoreTTL       = 24 * time.Hour
)

// Store persists conversations between turns.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Conversation, error)
	Save(ctx context.Context, c *Conversation) error
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore keeps conversations in process. Used by the REPL and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	convs map[string]*Conversation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{convs: map[string]*Conversation{}}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*Conversation, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidSession
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.convs[sessionID]
	if !ok {
		return nil, ErrStateNotFound
	}
	return clone(c), nil
}

func (s *MemoryStore) Save(_ context.Context, c *Conversation) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convs[c.SessionID] = clone(c)
	metrics.ActiveSessions.Set(float64(len(s.convs)))
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.convs, sessionID)
	metrics.ActiveSessions.Set(float64(len(s.convs)))
	return nil
}

func clone(c *Conversation) *Conversation {
	cp := *c
	cp.History = append([]*schema.Message(nil), c.History...)
	return &cp
}

type RedisConfig struct {
	Address   string        `envconfig:"ADDRESS" split_words:"true" default:"localhost:6379"`
	Password  string        `envconfig:"PASSWORD" split_words:"true"`
	DB        int           `envconfig:"DB" default:"0"`
	KeyPrefix string        `envconfig:"KEY_PREFIX" split_words:"true" default:"restaurant:conversation:"`
	TTL       time.Duration `envconfig:"TTL" default:"24h"`
}

// StoreOption customizes RedisStore.
type StoreOption func(*RedisStore)

func WithKeyPrefix(prefix string) StoreOption {
	return func(s *RedisStore) {
		trimmed := strings.TrimSpace(prefix)
		if trimmed != "" {
			s.keyPrefix = trimmed
		}
	}
}

func WithTTL(ttl time.Duration) StoreOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// RedisStore persists conversations as JSON strings with an expiry.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// NewRedisClient opens a client for cfg. The caller owns Close.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

func NewRedisStore(client redis.UniversalClient, opts ...StoreOption) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	store := &RedisStore{
		client:    client,
		keyPrefix: defaultStoreKeyPrefix,
		ttl:       defaultStoreTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	if store.ttl < 0 {
		return nil, errors.New("ttl must be >= 0")
	}
	return store, nil
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*Conversation, error) {
	key, err := s.redisKey(sessionID)
	if err != nil {
		return nil, err
	}

	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var c Conversation
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("unmarshal conversation: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid conversation loaded from store: %w", err)
	}
	return &c, nil
}

func (s *RedisStore) Save(ctx context.Context, c *Conversation) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now().UTC()
	}

	key, err := s.redisKey(c.SessionID)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	key, err := s.redisKey(sessionID)
	if err != nil {
		return err
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) redisKey(sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", ErrInvalidSession
	}
	return s.keyPrefix + sessionID, nil
}
