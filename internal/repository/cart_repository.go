package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/online-shop/internal/model"
)

// CartRepo persists cart lines in the `cart_items` table.  All lookups key
// on (user_id, product_id): the product reference identifies a line, never
// the line's own id.
type CartRepo struct{ DB *sql.DB }

func NewCartRepo(db *sql.DB) *CartRepo { return &CartRepo{DB: db} }

// Add inserts a cart line with quantity 1, or bumps the quantity when the
// user already has a line for the product.  The unique key on
// (user_id, product_id) makes the upsert race-safe at the row level.
func (r *CartRepo) Add(ctx context.Context, userID, productID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO cart_items (user_id, product_id, quantity) VALUES (?,?,1)
		 ON DUPLICATE KEY UPDATE quantity = quantity + 1`,
		userID, productID)
	return err
}

// SetQuantity updates a line's quantity. Zero removes the line entirely;
// a line never persists with quantity below one. Returns ErrNotFound when
// the user has no line for the product.
func (r *CartRepo) SetQuantity(ctx context.Context, userID, productID uint64, quantity uint32) error {
	if quantity == 0 {
		return r.Remove(ctx, userID, productID)
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE cart_items SET quantity=? WHERE user_id=? AND product_id=?",
		quantity, userID, productID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish "no such line" from "same quantity written twice".
		var id uint64
		err := r.DB.QueryRowContext(ctx,
			"SELECT id FROM cart_items WHERE user_id=? AND product_id=? LIMIT 1",
			userID, productID).Scan(&id)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Remove deletes the line for a product. Returns ErrNotFound when the user
// has no line for the product.
func (r *CartRepo) Remove(ctx context.Context, userID, productID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM cart_items WHERE user_id=? AND product_id=?", userID, productID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes every line in the user's cart. Clearing an empty cart is
// not an error.
func (r *CartRepo) Clear(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id=?", userID)
	return err
}

// List returns the user's cart joined with product details.
func (r *CartRepo) List(ctx context.Context, userID uint64) ([]model.CartLine, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT p.id,p.name,p.description,p.price,p.image_url,p.category,p.is_featured,
		        p.created_at,p.updated_at,ci.quantity
		 FROM cart_items ci
		 JOIN products p ON p.id = ci.product_id
		 WHERE ci.user_id=?
		 ORDER BY ci.created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.CartLine{}
	for rows.Next() {
		var l model.CartLine
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.Price, &l.ImageURL,
			&l.Category, &l.IsFeatured, &l.CreatedAt, &l.UpdatedAt, &l.Quantity); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
