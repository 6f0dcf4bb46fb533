// Package auth implements the token service: minting, verifying, refreshing
// and revoking the paired access/refresh tokens for a user session.  It is
// the only writer and reader of the session cache's refresh entries.
package auth

import "errors"

// Token failure taxonomy.  Handlers map these onto HTTP responses and keep
// the sub-kind in the message because clients behave differently on each:
// an expired access token means "refresh and retry", an invalid or revoked
// one means "log in again".
var (
	// ErrInvalidToken means the token is malformed or its signature does
	// not verify.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken means the token was well-formed and signed by us but
	// its expiry has passed.
	ErrExpiredToken = errors.New("token expired")
	// ErrRevokedToken means a refresh token no longer matches the value in
	// the session cache: it was superseded by a newer login or deleted by
	// logout.
	ErrRevokedToken = errors.New("token revoked")
	// ErrStoreUnavailable means the session cache could not be reached
	// within the operation's deadline.
	ErrStoreUnavailable = errors.New("session store unavailable")
)
