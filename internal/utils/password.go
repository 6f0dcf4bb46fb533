package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a plaintext secret with bcrypt at the given cost.
// The cost arrives from the BCRYPT_COST environment variable; values
// outside bcrypt's valid range are clamped to the library default so a
// misconfigured deployment degrades to slower hashing, not failed signups.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// The comparison cost is carried inside the hash itself, so hashes minted
// under an older cost setting keep verifying after the setting changes.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
