package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-shop/internal/auth"
	"github.com/iliyamo/online-shop/internal/config"
	"github.com/iliyamo/online-shop/internal/middleware"
	"github.com/iliyamo/online-shop/internal/model"
	"github.com/iliyamo/online-shop/internal/repository"
	"github.com/iliyamo/online-shop/internal/utils"
)

// UserStore is the slice of the credential store the auth endpoints use.
// *repository.UserRepo satisfies it; tests inject a fake.
type UserStore interface {
	Create(ctx context.Context, name, email, password string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens *auth.TokenService
}

func NewAuthHandler(cfg config.Config, users UserStore, tokens *auth.TokenService) *AuthHandler {
	if users == nil || tokens == nil {
		panic("nil dependency passed to NewAuthHandler")
	}
	return &AuthHandler{Cfg: cfg, Users: users, Tokens: tokens}
}

// ----- DTOs -----

type signupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) secure() bool { return h.Cfg.Env != "dev" }

// issueSession mints a token pair and sets both cookies.  A session cache
// outage is deliberately non-fatal here: the account work already
// succeeded, the tokens are still verifiable, and the user simply has to
// log in again once the access token lapses.  The outage is logged so it
// does not pass silently.
func (h *AuthHandler) issueSession(c echo.Context, userID uint64) error {
	pair, err := h.Tokens.Issue(c.Request().Context(), userID)
	if err != nil {
		if !errors.Is(err, auth.ErrStoreUnavailable) {
			return err
		}
		log.Printf("auth: session cache write failed for user %d, proceeding without durable session", userID)
	}
	setAuthCookies(c, pair, h.Tokens.AccessTTL(), h.Tokens.RefreshTTL(), h.secure())
	return nil
}

// Signup creates a user and logs them in immediately.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "All fields are required"})
	}
	if len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Password must be at least 6 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	if err := h.issueSession(c, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}

	return c.JSON(http.StatusCreated, model.PublicUser{
		ID:    uid,
		Name:  req.Name,
		Email: req.Email,
		Role:  model.RoleCustomer,
	})
}

// Login verifies credentials and issues a fresh pair, superseding any
// previous session's refresh token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid credentials"})
	}

	if err := h.issueSession(c, u.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}

	return c.JSON(http.StatusOK, u.Public())
}

// Refresh reads the refresh cookie and sets a fresh access cookie.  The
// refresh token itself is not rotated.  The error message distinguishes
// expired from invalid from revoked so the client knows whether a re-login
// is required.
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(auth.RefreshCookie)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no refresh token provided"})
	}

	access, err := h.Tokens.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrExpiredToken):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "refresh token expired"})
		case errors.Is(err, auth.ErrRevokedToken):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or revoked refresh token"})
		case errors.Is(err, auth.ErrStoreUnavailable):
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "session store unavailable"})
		default:
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
	}

	c.SetCookie(newAuthCookie(auth.AccessCookie, access.Token, h.Tokens.AccessTTL(), h.secure()))
	return c.JSON(http.StatusOK, echo.Map{"message": "access token refreshed successfully"})
}

// Logout best-effort revokes the server-side session and always clears both
// cookies.  A missing, expired or garbage refresh token still yields 200:
// the client ends up logged out either way.
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(auth.RefreshCookie); err == nil && cookie.Value != "" {
		if uid, err := h.Tokens.VerifyRefresh(cookie.Value); err == nil {
			if err := h.Tokens.Revoke(c.Request().Context(), uid); err != nil {
				log.Printf("auth: revoke for user %d failed: %v", uid, err)
			}
		}
	}
	clearAuthCookies(c, h.secure())
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out successfully"})
}

// Profile returns the authenticated user's public projection.
func (h *AuthHandler) Profile(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, u.Public())
}
