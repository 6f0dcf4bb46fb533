package middleware // middleware provides shared request processing for handlers

import (
    "context"
    "database/sql"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context

    "github.com/iliyamo/online-shop/internal/auth"
    "github.com/iliyamo/online-shop/internal/model"
)

// userKey is the context key under which Authenticate stores the resolved
// user for downstream middleware and handlers.
const userKey = "user"

// TokenVerifier is the view of the token service the gate needs: verify an
// access token's signature and expiry and return the embedded user ID.
type TokenVerifier interface {
    VerifyAccess(raw string) (uint64, error)
}

// UserResolver resolves a user ID against the credential store.  Satisfied
// by *repository.UserRepo; tests inject a fake.
type UserResolver interface {
    GetByID(ctx context.Context, id uint64) (model.User, error)
}

// Authenticate returns the first stage of the auth gate.  It reads the
// access token from its cookie, verifies signature and expiry, resolves the
// embedded user ID against the credential store and attaches the user
// (password hash stripped) to the request context.  The session cache is
// never consulted: access tokens are not revocable early, their 15-minute
// lifetime bounds exposure after a revocation.
//
// Failure modes are distinguished in the response body so clients know
// whether to refresh and retry (expired) or to log in again (everything
// else).
func Authenticate(tokens TokenVerifier, users UserResolver) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            cookie, err := c.Cookie(auth.AccessCookie)
            if err != nil || cookie.Value == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no access token provided"})
            }

            uid, err := tokens.VerifyAccess(cookie.Value)
            if err != nil {
                if errors.Is(err, auth.ErrExpiredToken) {
                    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "access token expired"})
                }
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid access token"})
            }

            ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
            defer cancel()

            u, err := users.GetByID(ctx, uid)
            if err != nil {
                if errors.Is(err, sql.ErrNoRows) {
                    // A deleted account can still hold a valid token; the
                    // lookup is what catches it.
                    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "user not found"})
                }
                return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "store unavailable"})
            }

            u.PasswordHash = "" // never let the hash travel past this point
            c.Set(userKey, u)
            return next(c)
        }
    }
}

// RequireAdmin is the second stage of the gate.  It consumes the user that
// Authenticate attached and rejects non-admin roles.  It must always be
// registered after Authenticate; a missing user means the chain was
// assembled wrong and the request is refused.
func RequireAdmin() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            u, ok := c.Get(userKey).(model.User)
            if !ok || !u.IsAdmin() {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied - admin only"})
            }
            return next(c)
        }
    }
}

// CurrentUser retrieves the authenticated user attached by Authenticate.
// ok is false when the handler was registered without the gate.
func CurrentUser(c echo.Context) (model.User, bool) {
    u, ok := c.Get(userKey).(model.User)
    return u, ok
}
