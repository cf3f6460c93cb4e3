// Package redisdict stores user-supplied dictionary words in a Redis set so
// they survive restarts and are shared between instances. Words are merged
// into the process dictionary at startup.
package redisdict

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const defaultKey = "ocrkit:custom_words"

// Store wraps a Redis client holding the custom word set.
type Store struct {
	client *redis.Client
	key    string
}

// New builds a Store over the provided Redis client.
func New(client *redis.Client) *Store {
	return &Store{client: client, key: defaultKey}
}

// Open connects to Redis at addr and verifies the connection.
func Open(ctx context.Context, addr string, db int) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return New(client), nil
}

// Add inserts a word into the custom set.
func (s *Store) Add(ctx context.Context, word string) error {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return fmt.Errorf("empty word")
	}
	if err := s.client.SAdd(ctx, s.key, word).Err(); err != nil {
		return fmt.Errorf("add custom word: %w", err)
	}
	return nil
}

// Remove deletes a word from the custom set.
func (s *Store) Remove(ctx context.Context, word string) error {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return fmt.Errorf("empty word")
	}
	if err := s.client.SRem(ctx, s.key, word).Err(); err != nil {
		return fmt.Errorf("remove custom word: %w", err)
	}
	return nil
}

// Words returns every word in the custom set.
func (s *Store) Words(ctx context.Context) ([]string, error) {
	words, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("list custom words: %w", err)
	}
	return words, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
