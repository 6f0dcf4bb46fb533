package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCache is an in-memory SessionCache.  When fail is set every call
// reports an outage.
type fakeCache struct {
	mu   sync.Mutex
	m    map[uint64]string
	fail bool
}

func newFakeCache() *fakeCache { return &fakeCache{m: map[uint64]string{}} }

func (f *fakeCache) SetRefresh(_ context.Context, userID uint64, token string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return ErrStoreUnavailable
	}
	f.m[userID] = token
	return nil
}

func (f *fakeCache) GetRefresh(_ context.Context, userID uint64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", ErrStoreUnavailable
	}
	return f.m[userID], nil
}

func (f *fakeCache) DeleteRefresh(_ context.Context, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return ErrStoreUnavailable
	}
	delete(f.m, userID)
	return nil
}

func newTestService(cache SessionCache) *TokenService {
	return NewTokenService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour, cache)
}

func TestIssueRefreshRoundTrip(t *testing.T) {
	svc := newTestService(newFakeCache())

	pair, err := svc.Issue(context.Background(), 42)
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access.Token)
	require.NotEmpty(t, pair.Refresh.Token)

	access, err := svc.Refresh(context.Background(), pair.Refresh.Token)
	require.NoError(t, err)

	uid, err := svc.VerifyAccess(access.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), uid)
}

func TestSecondIssueRevokesFirstRefresh(t *testing.T) {
	svc := newTestService(newFakeCache())

	// Both issuances land within the same second, where exp/iat alone
	// cannot tell the tokens apart.  Rotation still has to bite.
	first, err := svc.Issue(context.Background(), 7)
	require.NoError(t, err)
	second, err := svc.Issue(context.Background(), 7)
	require.NoError(t, err)
	require.NotEqual(t, first.Refresh.Token, second.Refresh.Token)
	require.NotEqual(t, first.Access.Token, second.Access.Token)

	_, err = svc.Refresh(context.Background(), first.Refresh.Token)
	assert.ErrorIs(t, err, ErrRevokedToken)

	_, err = svc.Refresh(context.Background(), second.Refresh.Token)
	assert.NoError(t, err)
}

func TestExpiredAccessDistinctFromTampered(t *testing.T) {
	cache := newFakeCache()
	expired := NewTokenService("access-secret", "refresh-secret", -time.Minute, 7*24*time.Hour, cache)

	pair, err := expired.Issue(context.Background(), 1)
	require.NoError(t, err)
	_, err = expired.VerifyAccess(pair.Access.Token)
	assert.ErrorIs(t, err, ErrExpiredToken)

	svc := newTestService(cache)
	pair, err = svc.Issue(context.Background(), 1)
	require.NoError(t, err)

	// Flip the last character of the signature.
	tampered := pair.Access.Token[:len(pair.Access.Token)-1]
	if strings.HasSuffix(pair.Access.Token, "A") {
		tampered += "B"
	} else {
		tampered += "A"
	}
	_, err = svc.VerifyAccess(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessTokenRejectedAsRefresh(t *testing.T) {
	svc := newTestService(newFakeCache())
	pair, err := svc.Issue(context.Background(), 3)
	require.NoError(t, err)

	// Signed with the access secret, so the refresh verifier must reject it.
	_, err = svc.Refresh(context.Background(), pair.Access.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevokeIsIdempotent(t *testing.T) {
	svc := newTestService(newFakeCache())
	pair, err := svc.Issue(context.Background(), 9)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), 9))
	require.NoError(t, svc.Revoke(context.Background(), 9))

	_, err = svc.Refresh(context.Background(), pair.Refresh.Token)
	assert.ErrorIs(t, err, ErrRevokedToken)
}

func TestIssueDegradesWhenStoreDown(t *testing.T) {
	cache := newFakeCache()
	cache.fail = true
	svc := newTestService(cache)

	pair, err := svc.Issue(context.Background(), 5)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	// The pair is still handed back so login can proceed degraded.
	require.NotEmpty(t, pair.Access.Token)

	uid, verr := svc.VerifyAccess(pair.Access.Token)
	require.NoError(t, verr)
	assert.Equal(t, uint64(5), uid)
}

func TestRefreshErrorsOnGarbage(t *testing.T) {
	svc := newTestService(newFakeCache())
	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
