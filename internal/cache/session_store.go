// Package cache provides the Redis-backed stores: the session store holding
// the single live refresh token per user, and the featured product cache.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/online-shop/internal/auth"
)

// opTimeout bounds every Redis call so a cache outage surfaces as
// auth.ErrStoreUnavailable instead of a hung request.
const opTimeout = 2 * time.Second

// SessionStore implements auth.SessionCache on top of Redis.  One key per
// user, value is the current refresh token, TTL matches the token's own
// expiry so stale entries evict themselves.  A nil client is a permanent
// outage: every call reports auth.ErrStoreUnavailable, so the server still
// boots without Redis and sessions degrade instead of panicking.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func refreshKey(userID uint64) string {
	return fmt.Sprintf("refresh:%d", userID)
}

// SetRefresh overwrites the stored refresh token for the user.  Last write
// wins; there is no compare-and-swap because superseding the previous
// session is exactly the intended behavior.
func (s *SessionStore) SetRefresh(ctx context.Context, userID uint64, token string, ttl time.Duration) error {
	if s.rdb == nil {
		return auth.ErrStoreUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := s.rdb.Set(ctx, refreshKey(userID), token, ttl).Err(); err != nil {
		return auth.ErrStoreUnavailable
	}
	return nil
}

// GetRefresh returns the stored refresh token, or the empty string when no
// session exists for the user.
func (s *SessionStore) GetRefresh(ctx context.Context, userID uint64) (string, error) {
	if s.rdb == nil {
		return "", auth.ErrStoreUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	v, err := s.rdb.Get(ctx, refreshKey(userID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", auth.ErrStoreUnavailable
	}
	return v, nil
}

// DeleteRefresh removes the stored refresh token.  Deleting an absent key
// succeeds, which keeps logout idempotent.
func (s *SessionStore) DeleteRefresh(ctx context.Context, userID uint64) error {
	if s.rdb == nil {
		return auth.ErrStoreUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := s.rdb.Del(ctx, refreshKey(userID)).Err(); err != nil {
		return auth.ErrStoreUnavailable
	}
	return nil
}
