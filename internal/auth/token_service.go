package auth

import (
    "context"
    "crypto/rand"
    "crypto/subtle"
    "encoding/hex"
    "errors"
    "strconv"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// AccessToken represents a signed JWT access token along with its expiry.
// Access tokens are short-lived, stateless and never revocable before their
// natural expiry; validity is proven purely by signature and exp claim.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// RefreshToken is the long-lived counterpart.  Its raw value is also stored
// server-side in the session cache, which is what makes it revocable.
type RefreshToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // UTC expiration time
}

// TokenPair bundles the two tokens issued together on login or signup.
type TokenPair struct {
    Access  AccessToken
    Refresh RefreshToken
}

// SessionCache is the narrow view of the key-value session store the token
// service needs.  Exactly one refresh token value is tracked per user; Set
// overwrites unconditionally (last write wins), Get returns the empty
// string when no value is stored, and Delete of an absent key is not an
// error.  Implementations must bound every call with a timeout and report
// outages as ErrStoreUnavailable.
type SessionCache interface {
    SetRefresh(ctx context.Context, userID uint64, token string, ttl time.Duration) error
    GetRefresh(ctx context.Context, userID uint64) (string, error)
    DeleteRefresh(ctx context.Context, userID uint64) error
}

// TokenService mints and verifies the token pair for a user and owns the
// refresh entries in the session cache.  Access and refresh tokens are
// signed with separate secrets so one class of token can never be replayed
// as the other.
type TokenService struct {
    accessSecret  []byte
    refreshSecret []byte
    accessTTL     time.Duration
    refreshTTL    time.Duration
    cache         SessionCache
}

// NewTokenService constructs a TokenService.  The cache must be non-nil;
// every dependency is explicit so tests can inject a fake.
func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, cache SessionCache) *TokenService {
    if cache == nil {
        panic("nil session cache passed to NewTokenService")
    }
    return &TokenService{
        accessSecret:  []byte(accessSecret),
        refreshSecret: []byte(refreshSecret),
        accessTTL:     accessTTL,
        refreshTTL:    refreshTTL,
        cache:         cache,
    }
}

// Issue mints a fresh access/refresh pair for the user and stores the
// refresh token in the session cache under the user's key with a TTL equal
// to the token's own lifetime.  The write overwrites any prior value, which
// is the rotation point: logging in anywhere invalidates the previous
// session's refresh token.
//
// When the cache write fails the pair is still returned together with
// ErrStoreUnavailable.  Callers decide whether to abort or proceed with a
// degraded session; the login and signup handlers proceed and log, since
// the tokens themselves remain verifiable until the user needs a refresh.
func (s *TokenService) Issue(ctx context.Context, userID uint64) (TokenPair, error) {
    access, err := s.mint(s.accessSecret, userID, s.accessTTL)
    if err != nil {
        return TokenPair{}, err
    }
    refresh, err := s.mint(s.refreshSecret, userID, s.refreshTTL)
    if err != nil {
        return TokenPair{}, err
    }
    pair := TokenPair{
        Access:  AccessToken{Token: access.Token, Exp: access.Exp},
        Refresh: RefreshToken{Token: refresh.Token, Exp: refresh.Exp},
    }
    if err := s.cache.SetRefresh(ctx, userID, refresh.Token, s.refreshTTL); err != nil {
        return pair, ErrStoreUnavailable
    }
    return pair, nil
}

// Refresh verifies a presented refresh token and, when it matches the value
// currently stored for its user, mints a new access token.  The refresh
// token itself is not rotated here.  The credential store is never touched.
func (s *TokenService) Refresh(ctx context.Context, raw string) (AccessToken, error) {
    userID, err := s.verify(s.refreshSecret, raw)
    if err != nil {
        return AccessToken{}, err
    }
    stored, err := s.cache.GetRefresh(ctx, userID)
    if err != nil {
        return AccessToken{}, ErrStoreUnavailable
    }
    // The token is live only while it byte-equals the stored value; an
    // absent or different value means it was superseded or deleted.
    if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(raw)) != 1 {
        return AccessToken{}, ErrRevokedToken
    }
    access, err := s.mint(s.accessSecret, userID, s.accessTTL)
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: access.Token, Exp: access.Exp}, nil
}

// Revoke deletes the stored refresh token for the user.  Absence is not an
// error, so revoking twice or revoking a never-issued session succeeds.
func (s *TokenService) Revoke(ctx context.Context, userID uint64) error {
    if err := s.cache.DeleteRefresh(ctx, userID); err != nil {
        return ErrStoreUnavailable
    }
    return nil
}

// VerifyAccess checks an access token's signature and expiry and returns
// the embedded user ID.  The session cache is deliberately not consulted:
// access tokens are never revocable early, only their short lifetime bounds
// exposure after a revocation.
func (s *TokenService) VerifyAccess(raw string) (uint64, error) {
    return s.verify(s.accessSecret, raw)
}

// VerifyRefresh checks a refresh token's signature and expiry only.  Used
// by logout, which tolerates revoked tokens and therefore skips the cache
// comparison that Refresh performs.
func (s *TokenService) VerifyRefresh(raw string) (uint64, error) {
    return s.verify(s.refreshSecret, raw)
}

// AccessTTL exposes the configured access token lifetime for cookie Max-Age.
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL exposes the configured refresh token lifetime for cookie Max-Age.
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

type minted struct {
    Token string
    Exp   time.Time
}

// mint builds and signs an HS256 JWT carrying the user ID as subject.  The
// claims follow the same shape for both token classes; only secret and TTL
// differ.  The random jti makes every mint distinct: with only second-
// granularity exp/iat, two issuances inside the same second would otherwise
// serialize to the same bytes and the cache overwrite would rotate nothing.
func (s *TokenService) mint(secret []byte, userID uint64, ttl time.Duration) (minted, error) {
    nonce := make([]byte, 16)
    if _, err := rand.Read(nonce); err != nil {
        return minted{}, err
    }
    exp := time.Now().UTC().Add(ttl)
    claims := jwt.MapClaims{
        "sub": userID,
        "jti": hex.EncodeToString(nonce),
        "exp": exp.Unix(),
        "iat": time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString(secret)
    if err != nil {
        return minted{}, err
    }
    return minted{Token: signed, Exp: exp}, nil
}

// verify parses a token against the given secret and returns the subject
// claim.  Expiry failures are reported as ErrExpiredToken, every other
// parse or signature failure as ErrInvalidToken.
func (s *TokenService) verify(secret []byte, raw string) (uint64, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Reject any signing method other than HMAC.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return secret, nil
    })
    if err != nil {
        if errors.Is(err, jwt.ErrTokenExpired) {
            return 0, ErrExpiredToken
        }
        return 0, ErrInvalidToken
    }
    if !tok.Valid {
        return 0, ErrInvalidToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return 0, ErrInvalidToken
    }
    return subjectID(claims)
}

// subjectID extracts the user ID from the sub claim.  JWT numbers decode as
// float64; string subjects are parsed for compatibility with tokens minted
// by other tooling.
func subjectID(claims jwt.MapClaims) (uint64, error) {
    switch sub := claims["sub"].(type) {
    case float64:
        return uint64(sub), nil
    case string:
        if n, err := strconv.ParseUint(sub, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, ErrInvalidToken
}
