// Package session is the cookie-backed browsing session: a Redis-stored
// commerce auth token, a single-slot one-shot order error, and the in-flight
// submission guard. The cookie itself only carries an opaque session id.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gnimmelf/eike-storefront/internal/domain"
)

const (
	tokenKeyPrefix    = "session:token:"
	errorKeyPrefix    = "session:ordererr:"
	inflightKeyPrefix = "session:inflight:"
)

// Store persists per-session state in Redis.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a Redis-backed session store. Entries expire after ttl of
// inactivity.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
	}
}

// Token returns the commerce API auth token for the session, or "" when the
// session has none yet.
func (s *Store) Token(ctx context.Context, sessionID string) (string, error) {
	token, err := s.client.Get(ctx, tokenKeyPrefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis get session token: %w", err)
	}
	return token, nil
}

// SetToken stores the commerce API auth token for the session and refreshes
// its TTL.
func (s *Store) SetToken(ctx context.Context, sessionID, token string) error {
	if err := s.client.Set(ctx, tokenKeyPrefix+sessionID, token, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session token: %w", err)
	}
	return nil
}

// SetOrderError writes the one-shot order error slot. The slot holds at most
// one error; a second write before the read replaces the first.
func (s *Store) SetOrderError(ctx context.Context, sessionID string, orderErr *domain.OrderError) error {
	data, err := json.Marshal(orderErr)
	if err != nil {
		return fmt.Errorf("marshal order error: %w", err)
	}
	if err := s.client.Set(ctx, errorKeyPrefix+sessionID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set order error: %w", err)
	}
	return nil
}

// TakeOrderError reads and clears the one-shot order error slot in a single
// round trip, so a page refresh after the error has been shown renders clean.
// Returns nil when the slot is empty.
func (s *Store) TakeOrderError(ctx context.Context, sessionID string) (*domain.OrderError, error) {
	data, err := s.client.GetDel(ctx, errorKeyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis getdel order error: %w", err)
	}

	var orderErr domain.OrderError
	if err := json.Unmarshal(data, &orderErr); err != nil {
		return nil, fmt.Errorf("unmarshal order error: %w", err)
	}
	return &orderErr, nil
}

// AcquireSubmitLock takes the per-session in-flight submission guard. It
// returns false when a submission is already in flight, in which case the
// caller must drop the new submission without issuing a backend request.
func (s *Store) AcquireSubmitLock(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, inflightKeyPrefix+sessionID, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis acquire submit lock: %w", err)
	}
	return ok, nil
}

// ReleaseSubmitLock releases the in-flight submission guard. The lock TTL
// bounds the damage if a release is lost.
func (s *Store) ReleaseSubmitLock(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, inflightKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("redis release submit lock: %w", err)
	}
	return nil
}
