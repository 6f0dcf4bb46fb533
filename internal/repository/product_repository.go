package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/online-shop/internal/model"
)

const productCols = "id,name,description,price,image_url,category,is_featured,created_at,updated_at"

type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

func scanProduct(row interface{ Scan(...any) error }) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL,
		&p.Category, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func collectProducts(rows *sql.Rows) ([]model.Product, error) {
	defer rows.Close()
	out := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// All returns every product in the catalog.
func (r *ProductRepo) All(ctx context.Context) ([]model.Product, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+productCols+" FROM products")
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// GetByID fetches a single product.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (model.Product, error) {
	p, err := scanProduct(r.DB.QueryRowContext(ctx,
		"SELECT "+productCols+" FROM products WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return p, ErrNotFound
	}
	return p, err
}

// Create inserts a product and returns it with its assigned ID.
func (r *ProductRepo) Create(ctx context.Context, p model.Product) (model.Product, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO products (name, description, price, image_url, category) VALUES (?,?,?,?,?)",
		p.Name, p.Description, p.Price, p.ImageURL, p.Category)
	if err != nil {
		return model.Product{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Product{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Delete removes a product. Returns ErrNotFound when no row was deleted.
func (r *ProductRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id=?", id)
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

// ByCategory returns products in the given category.
func (r *ProductRepo) ByCategory(ctx context.Context, category string) ([]model.Product, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+productCols+" FROM products WHERE category=?", category)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// Featured returns products flagged as featured.
func (r *ProductRepo) Featured(ctx context.Context) ([]model.Product, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+productCols+" FROM products WHERE is_featured=1")
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// Random returns up to n random products for the recommendations endpoint.
// ORDER BY RAND() is fine at catalog scale; revisit if products grow past
// tens of thousands of rows.
func (r *ProductRepo) Random(ctx context.Context, n int) ([]model.Product, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+productCols+" FROM products ORDER BY RAND() LIMIT ?", n)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// ToggleFeatured flips a product's featured flag and returns the updated row.
func (r *ProductRepo) ToggleFeatured(ctx context.Context, id uint64) (model.Product, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE products SET is_featured = NOT is_featured WHERE id=?", id)
	if err != nil {
		return model.Product{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Product{}, err
	}
	if n == 0 {
		return model.Product{}, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Count returns the catalog size. Used by analytics.
func (r *ProductRepo) Count(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n)
	return n, err
}
