package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/krishnakath/dairyshop-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// SessionCartStore persists guest carts keyed by session ID. Lines map
// product IDs to quantities. Carts expire with the session TTL and are
// deleted outright when merged into a user cart at login.
type SessionCartStore interface {
	Get(ctx context.Context, sessionID string) (map[uint]int, error)
	Save(ctx context.Context, sessionID string, lines map[uint]int) error
	Delete(ctx context.Context, sessionID string) error
}

type redisSessionCartStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionCartStore(client *redis.Client, ttl time.Duration) SessionCartStore {
	return &redisSessionCartStore{client: client, ttl: ttl}
}

func sessionCartKey(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

func (s *redisSessionCartStore) Get(ctx context.Context, sessionID string) (map[uint]int, error) {
	data, err := s.client.Get(ctx, sessionCartKey(sessionID)).Bytes()
	if err == redis.Nil {
		return map[uint]int{}, nil
	}
	if err != nil {
		logger.Error("Failed to read session cart from Redis", err, map[string]interface{}{
			"session_id": sessionID,
		})
		return nil, err
	}

	var lines map[uint]int
	if err := json.Unmarshal(data, &lines); err != nil {
		logger.Error("Failed to decode session cart payload", err, map[string]interface{}{
			"session_id": sessionID,
		})
		return nil, err
	}
	return lines, nil
}

// Save replaces the whole cart. An empty line set deletes the key so stale
// sessions do not linger in Redis.
func (s *redisSessionCartStore) Save(ctx context.Context, sessionID string, lines map[uint]int) error {
	if len(lines) == 0 {
		return s.Delete(ctx, sessionID)
	}

	data, err := json.Marshal(lines)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, sessionCartKey(sessionID), data, s.ttl).Err(); err != nil {
		logger.Error("Failed to write session cart to Redis", err, map[string]interface{}{
			"session_id": sessionID,
		})
		return err
	}

	logger.Debug("Session cart saved to Redis", map[string]interface{}{
		"session_id": sessionID,
		"line_count": len(lines),
	})
	return nil
}

func (s *redisSessionCartStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionCartKey(sessionID)).Err(); err != nil {
		logger.Error("Failed to delete session cart from Redis", err, map[string]interface{}{
			"session_id": sessionID,
		})
		return err
	}
	return nil
}
