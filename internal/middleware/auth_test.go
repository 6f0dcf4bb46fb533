package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/online-shop/internal/auth"
	"github.com/iliyamo/online-shop/internal/model"
)

// memCache is an in-memory auth.SessionCache so the tests can mint real
// tokens without Redis.
type memCache struct{ m map[uint64]string }

func (f *memCache) SetRefresh(_ context.Context, id uint64, tok string, _ time.Duration) error {
	f.m[id] = tok
	return nil
}
func (f *memCache) GetRefresh(_ context.Context, id uint64) (string, error) { return f.m[id], nil }
func (f *memCache) DeleteRefresh(_ context.Context, id uint64) error {
	delete(f.m, id)
	return nil
}

// fakeUsers resolves from a fixed map; unknown IDs behave like the real
// repo and return sql.ErrNoRows.
type fakeUsers struct{ users map[uint64]model.User }

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func newGateFixture(ttl time.Duration) (*auth.TokenService, *fakeUsers) {
	svc := auth.NewTokenService("acc", "ref", ttl, 7*24*time.Hour, &memCache{m: map[uint64]string{}})
	users := &fakeUsers{users: map[uint64]model.User{
		1: {ID: 1, Name: "Ada", Email: "ada@x.com", Role: model.RoleAdmin, PasswordHash: "sekret"},
		2: {ID: 2, Name: "Bob", Email: "bob@x.com", Role: model.RoleCustomer, PasswordHash: "sekret"},
	}}
	return svc, users
}

// run sends a request with the given access cookie through the supplied
// middleware chain ending in a handler that reports the attached user.
func run(t *testing.T, chain []echo.MiddlewareFunc, cookie string) (*httptest.ResponseRecorder, *model.User) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: auth.AccessCookie, Value: cookie})
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *model.User
	h := func(c echo.Context) error {
		if u, ok := CurrentUser(c); ok {
			seen = &u
		}
		return c.NoContent(http.StatusOK)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	require.NoError(t, h(c))
	return rec, seen
}

func TestAuthenticateAttachesSanitizedUser(t *testing.T) {
	svc, users := newGateFixture(15 * time.Minute)
	pair, err := svc.Issue(context.Background(), 2)
	require.NoError(t, err)

	rec, seen := run(t, []echo.MiddlewareFunc{Authenticate(svc, users)}, pair.Access.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, uint64(2), seen.ID)
	assert.Empty(t, seen.PasswordHash)
}

func TestAuthenticateMissingToken(t *testing.T) {
	svc, users := newGateFixture(15 * time.Minute)
	rec, _ := run(t, []echo.MiddlewareFunc{Authenticate(svc, users)}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "no access token")
}

func TestAuthenticateExpiredVsInvalid(t *testing.T) {
	expiredSvc, users := newGateFixture(-time.Minute)
	pair, err := expiredSvc.Issue(context.Background(), 1)
	require.NoError(t, err)

	rec, _ := run(t, []echo.MiddlewareFunc{Authenticate(expiredSvc, users)}, pair.Access.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "access token expired")

	svc, users := newGateFixture(15 * time.Minute)
	rec, _ = run(t, []echo.MiddlewareFunc{Authenticate(svc, users)}, "garbage.token.value")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid access token")
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc, users := newGateFixture(15 * time.Minute)
	pair, err := svc.Issue(context.Background(), 99) // valid token, deleted account
	require.NoError(t, err)

	rec, _ := run(t, []echo.MiddlewareFunc{Authenticate(svc, users)}, pair.Access.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "user not found")
}

func TestRequireAdminForbidsCustomer(t *testing.T) {
	svc, users := newGateFixture(15 * time.Minute)
	pair, err := svc.Issue(context.Background(), 2) // customer
	require.NoError(t, err)

	chain := []echo.MiddlewareFunc{Authenticate(svc, users), RequireAdmin()}
	rec, _ := run(t, chain, pair.Access.Token)
	// Authenticated but under-privileged: 403, not 401.
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdminPassesAdmin(t *testing.T) {
	svc, users := newGateFixture(15 * time.Minute)
	pair, err := svc.Issue(context.Background(), 1) // admin
	require.NoError(t, err)

	chain := []echo.MiddlewareFunc{Authenticate(svc, users), RequireAdmin()}
	rec, seen := run(t, chain, pair.Access.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.True(t, seen.IsAdmin())
}

func TestRequireAdminUnchainedRefuses(t *testing.T) {
	rec, _ := run(t, []echo.MiddlewareFunc{RequireAdmin()}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
