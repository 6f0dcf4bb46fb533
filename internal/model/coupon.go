package model

import "time"

// Coupon models a row in the `coupons` table.  Each coupon belongs to a
// single user and is single-use: validation flips IsActive to false once
// the coupon is spent or discovered to be expired.
//
// Fields:
//  ID                 – primary key identifier.
//  Code               – unique redemption code shown to the user.
//  DiscountPercentage – whole-number percentage taken off the order total.
//  ExpiresAt          – expiry timestamp; checked at validation time.
//  UserID             – owning user.
//  IsActive           – false once used or found expired.
type Coupon struct {
    ID                 uint64    `json:"id"`
    Code               string    `json:"code"`
    DiscountPercentage uint32    `json:"discount_percentage"`
    ExpiresAt          time.Time `json:"expires_at"`
    UserID             uint64    `json:"user_id"`
    IsActive           bool      `json:"is_active"`
    CreatedAt          time.Time `json:"created_at"`
}

// Expired reports whether the coupon's expiry has passed at the given time.
func (c Coupon) Expired(now time.Time) bool {
    return now.After(c.ExpiresAt)
}
