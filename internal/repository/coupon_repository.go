package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/online-shop/internal/model"
)

const couponCols = "id,code,discount_percentage,expires_at,user_id,is_active,created_at"

type CouponRepo struct{ DB *sql.DB }

func NewCouponRepo(db *sql.DB) *CouponRepo { return &CouponRepo{DB: db} }

func scanCoupon(row interface{ Scan(...any) error }) (model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(&c.ID, &c.Code, &c.DiscountPercentage, &c.ExpiresAt,
		&c.UserID, &c.IsActive, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	return c, err
}

// ActiveForUser returns the user's current active coupon, or ErrNotFound.
func (r *CouponRepo) ActiveForUser(ctx context.Context, userID uint64) (model.Coupon, error) {
	return scanCoupon(r.DB.QueryRowContext(ctx,
		"SELECT "+couponCols+" FROM coupons WHERE user_id=? AND is_active=1 LIMIT 1", userID))
}

// GetActiveByCode returns the active coupon with the given code owned by
// the user, or ErrNotFound.
func (r *CouponRepo) GetActiveByCode(ctx context.Context, code string, userID uint64) (model.Coupon, error) {
	return scanCoupon(r.DB.QueryRowContext(ctx,
		"SELECT "+couponCols+" FROM coupons WHERE code=? AND user_id=? AND is_active=1 LIMIT 1",
		code, userID))
}

// Deactivate marks a coupon inactive.  Used both when a coupon is spent and
// when validation discovers it has expired.  Deactivating an already
// inactive coupon is a no-op.
func (r *CouponRepo) Deactivate(ctx context.Context, code string, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE coupons SET is_active=0 WHERE code=? AND user_id=?", code, userID)
	return err
}

// Replace removes any existing coupon for the user and inserts the new one.
// A user holds at most one coupon at a time; the gift coupon issued after a
// qualifying purchase supersedes whatever was there before.
func (r *CouponRepo) Replace(ctx context.Context, c model.Coupon) (model.Coupon, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Coupon{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM coupons WHERE user_id=?", c.UserID); err != nil {
		return model.Coupon{}, err
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO coupons (code, discount_percentage, expires_at, user_id, is_active) VALUES (?,?,?,?,1)",
		c.Code, c.DiscountPercentage, c.ExpiresAt, c.UserID)
	if err != nil {
		return model.Coupon{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Coupon{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Coupon{}, err
	}
	c.ID = uint64(id)
	c.IsActive = true
	return c, nil
}
