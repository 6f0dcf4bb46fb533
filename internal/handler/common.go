package handler // handler defines http handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-shop/internal/auth"
)

// newAuthCookie builds one credential-carrier cookie.  Both carriers are
// httpOnly (no script access), same-site strict, domain-wide, and secure
// outside of dev so they only travel over TLS in production.
func newAuthCookie(name, value string, maxAge time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// setAuthCookies attaches both tokens of a freshly issued pair.
func setAuthCookies(c echo.Context, pair auth.TokenPair, accessTTL, refreshTTL time.Duration, secure bool) {
	c.SetCookie(newAuthCookie(auth.AccessCookie, pair.Access.Token, accessTTL, secure))
	c.SetCookie(newAuthCookie(auth.RefreshCookie, pair.Refresh.Token, refreshTTL, secure))
}

// clearAuthCookies expires both carriers client-side.
func clearAuthCookies(c echo.Context, secure bool) {
	c.SetCookie(newAuthCookie(auth.AccessCookie, "", -time.Second, secure))
	c.SetCookie(newAuthCookie(auth.RefreshCookie, "", -time.Second, secure))
}
