package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/online-shop/internal/auth"
	"github.com/iliyamo/online-shop/internal/config"
	"github.com/iliyamo/online-shop/internal/model"
	"github.com/iliyamo/online-shop/internal/repository"
	"github.com/iliyamo/online-shop/internal/utils"
)

// memSessions is an in-memory stand-in for the Redis session store.
type memSessions struct {
	mu     sync.Mutex
	tokens map[uint64]string
}

func newMemSessions() *memSessions { return &memSessions{tokens: map[uint64]string{}} }

func (m *memSessions) SetRefresh(_ context.Context, userID uint64, token string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[userID] = token
	return nil
}

func (m *memSessions) GetRefresh(_ context.Context, userID uint64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[userID], nil
}

func (m *memSessions) DeleteRefresh(_ context.Context, userID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, userID)
	return nil
}

// fakeUserStore backs the auth endpoints with an in-memory user table.
type fakeUserStore struct {
	byEmail map[string]model.User
	nextID  uint64
}

func newFakeUserStore() *fakeUserStore { return &fakeUserStore{byEmail: map[string]model.User{}} }

func (f *fakeUserStore) Create(_ context.Context, name, email, password string, cost int) (uint64, error) {
	if _, ok := f.byEmail[email]; ok {
		return 0, repository.ErrEmailExists
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	f.nextID++
	f.byEmail[email] = model.User{ID: f.nextID, Name: name, Email: email, PasswordHash: hash, Role: model.RoleCustomer}
	return f.nextID, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func newAuthFixture() *AuthHandler {
	cfg := config.Config{Env: "dev", BcryptCost: bcrypt.MinCost}
	tokens := auth.NewTokenService("acc-secret", "ref-secret", 15*time.Minute, 7*24*time.Hour, newMemSessions())
	return NewAuthHandler(cfg, newFakeUserStore(), tokens)
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestSignupValidationAndDuplicate(t *testing.T) {
	h := newAuthFixture()

	c, rec := jsonCtx(http.MethodPost, "/v1/auth/signup", `{"name":"Dana","email":"dana@example.com"}`)
	require.NoError(t, h.Signup(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "All fields are required")

	c, rec = jsonCtx(http.MethodPost, "/v1/auth/signup", `{"name":"Dana","email":"dana@example.com","password":"abc"}`)
	require.NoError(t, h.Signup(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "at least 6 characters")

	body := `{"name":"Dana","email":"dana@example.com","password":"secret1"}`
	c, rec = jsonCtx(http.MethodPost, "/v1/auth/signup", body)
	require.NoError(t, h.Signup(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password", "response must not leak credentials")
	require.NotNil(t, cookieByName(rec, auth.AccessCookie))
	require.NotNil(t, cookieByName(rec, auth.RefreshCookie))

	c, rec = jsonCtx(http.MethodPost, "/v1/auth/signup", body)
	require.NoError(t, h.Signup(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email already exists")
}

func TestLoginDoesNotRevealWhichFieldWasWrong(t *testing.T) {
	h := newAuthFixture()
	c, _ := jsonCtx(http.MethodPost, "/v1/auth/signup", `{"name":"Dana","email":"dana@example.com","password":"secret1"}`)
	require.NoError(t, h.Signup(c))

	c, unknown := jsonCtx(http.MethodPost, "/v1/auth/login", `{"email":"nobody@example.com","password":"secret1"}`)
	require.NoError(t, h.Login(c))
	c, badPass := jsonCtx(http.MethodPost, "/v1/auth/login", `{"email":"dana@example.com","password":"wrong99"}`)
	require.NoError(t, h.Login(c))

	assert.Equal(t, http.StatusBadRequest, unknown.Code)
	assert.Equal(t, http.StatusBadRequest, badPass.Code)
	assert.Equal(t, unknown.Body.String(), badPass.Body.String())
}

func TestRefreshThenLogoutRevokesSession(t *testing.T) {
	h := newAuthFixture()
	c, rec := jsonCtx(http.MethodPost, "/v1/auth/signup", `{"name":"Dana","email":"dana@example.com","password":"secret1"}`)
	require.NoError(t, h.Signup(c))
	refresh := cookieByName(rec, auth.RefreshCookie)
	require.NotNil(t, refresh)

	withRefresh := func(target string) (echo.Context, *httptest.ResponseRecorder) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(""))
		req.AddCookie(&http.Cookie{Name: auth.RefreshCookie, Value: refresh.Value})
		rec := httptest.NewRecorder()
		return e.NewContext(req, rec), rec
	}

	c, rec = withRefresh("/v1/auth/refresh")
	require.NoError(t, h.Refresh(c))
	require.Equal(t, http.StatusOK, rec.Code)
	access := cookieByName(rec, auth.AccessCookie)
	require.NotNil(t, access)
	assert.NotEmpty(t, access.Value)

	c, rec = withRefresh("/v1/auth/logout")
	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	for _, name := range []string{auth.AccessCookie, auth.RefreshCookie} {
		cleared := cookieByName(rec, name)
		require.NotNil(t, cleared, fmt.Sprintf("%s should be cleared", name))
		assert.Empty(t, cleared.Value)
	}

	// The stored session is gone: the old refresh token verifies but no
	// longer matches anything server-side.
	c, rec = withRefresh("/v1/auth/refresh")
	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or revoked refresh token")
}

func TestLogoutWithoutSessionStillSucceeds(t *testing.T) {
	h := newAuthFixture()

	c, rec := jsonCtx(http.MethodPost, "/v1/auth/logout", "")
	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Repeat logout is a no-op, not an error.
	c, rec = jsonCtx(http.MethodPost, "/v1/auth/logout", "")
	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
