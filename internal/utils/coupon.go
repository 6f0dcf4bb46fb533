package utils

import (
	"crypto/rand"
	"math/big"
)

const couponAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewCouponCode returns "GIFT" followed by n random characters from a
// crypto-secure source. Uniqueness is enforced by the database, not here.
func NewCouponCode(n int) (string, error) {
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(couponAlphabet))))
		if err != nil {
			return "", err
		}
		buf[i] = couponAlphabet[idx.Int64()]
	}
	return "GIFT" + string(buf), nil
}
