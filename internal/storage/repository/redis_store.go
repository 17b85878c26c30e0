package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tair/storefront/pkg/logger"
)

// changeEnvelope is the pub/sub message published after every write. The
// origin id lets subscribers drop notifications for their own writes: the
// store contract only promises events for changes made by other processes.
type changeEnvelope struct {
	Origin  string          `json:"origin"`
	Deleted bool            `json:"deleted,omitempty"`
	Value   json.RawMessage `json:"value,omitempty"`
}

// RedisStore implements the durable slot on Redis. Values live under plain
// keys; every write is followed by a PUBLISH on a per-key channel so other
// processes sharing the slot hear about the change. Pub/sub delivery is
// at-least-once and unordered relative to local writes, which is exactly
// what the store contract promises — no more.
type RedisStore struct {
	client *redis.Client
	prefix string
	origin string

	mu      sync.Mutex
	pubsubs map[int]*redis.PubSub
	nextSub int
}

// NewRedisStore creates a store on an established Redis client. The prefix
// namespaces keys so several storefront deployments can share one Redis.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client:  client,
		prefix:  prefix,
		origin:  uuid.NewString(),
		pubsubs: make(map[int]*redis.PubSub),
	}
}

func (s *RedisStore) dataKey(key string) string {
	return fmt.Sprintf("%s:slot:%s", s.prefix, key)
}

func (s *RedisStore) channel(key string) string {
	return fmt.Sprintf("%s:changed:%s", s.prefix, key)
}

// Read returns the value stored under key. Backend failures degrade to
// absent; the caller falls back to its default.
func (s *RedisStore) Read(ctx context.Context, key string) ([]byte, bool) {
	raw, err := s.client.Get(ctx, s.dataKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("key", key).
			Msg("Slot read failed, treating as absent")
		return nil, false
	}
	return raw, true
}

// Write durably stores value, then publishes the change.
func (s *RedisStore) Write(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.dataKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}

	s.publish(ctx, key, changeEnvelope{Origin: s.origin, Value: value})
	return nil
}

// Delete removes the value and publishes the deletion.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.dataKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete slot %s: %w", key, err)
	}

	s.publish(ctx, key, changeEnvelope{Origin: s.origin, Deleted: true})
	return nil
}

func (s *RedisStore) publish(ctx context.Context, key string, env changeEnvelope) {
	payload, err := json.Marshal(env)
	if err == nil {
		err = s.client.Publish(ctx, s.channel(key), payload).Err()
	}
	if err != nil {
		// The write itself is durable; a missed notification only delays
		// other processes until their next read.
		logger.Warn(ctx).
			Err(err).
			Str("key", key).
			Msg("Failed to publish slot change")
	}
}

// Subscribe listens on the per-key channel, dropping this store's own
// writes. Deletions are delivered as nil.
func (s *RedisStore) Subscribe(key string, fn func([]byte)) func() {
	ctx := context.Background()
	pubsub := s.client.Subscribe(ctx, s.channel(key))

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.pubsubs[id] = pubsub
	s.mu.Unlock()

	go func() {
		for msg := range pubsub.Channel() {
			var env changeEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				logger.Logger.Warn().Err(err).Str("key", key).Msg("Undecodable slot notification dropped")
				continue
			}
			if env.Origin == s.origin {
				continue
			}
			if env.Deleted {
				fn(nil)
				continue
			}
			fn([]byte(env.Value))
		}
	}()

	return func() {
		s.mu.Lock()
		delete(s.pubsubs, id)
		s.mu.Unlock()
		if err := pubsub.Close(); err != nil {
			logger.Logger.Warn().Err(err).Str("key", key).Msg("Failed to close slot subscription")
		}
	}
}

// Close shuts down all subscriptions and the underlying client.
func (s *RedisStore) Close() error {
	s.mu.Lock()
	for id, pubsub := range s.pubsubs {
		_ = pubsub.Close()
		delete(s.pubsubs, id)
	}
	s.mu.Unlock()

	return s.client.Close()
}
