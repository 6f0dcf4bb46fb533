package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/online-shop/internal/model"
)

type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

// MySQL duplicate-key error code; hit when an order with the same gateway
// reference was already recorded.
const errDuplicateRef = "1062"

// Create persists an order and its items in one transaction and returns the
// order with its assigned ID.
func (r *OrderRepo) Create(ctx context.Context, o model.Order) (model.Order, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Order{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO orders (user_id, gateway_ref, total_amount) VALUES (?,?,?)",
		o.UserID, o.GatewayRef, o.TotalAmount)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), errDuplicateRef) {
			// Same gateway order confirmed twice; hand back the stored row.
			return r.GetByGatewayRef(ctx, o.GatewayRef)
		}
		return model.Order{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Order{}, err
	}
	for _, it := range o.Items {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO order_items (order_id, product_id, quantity, price) VALUES (?,?,?,?)",
			id, it.ProductID, it.Quantity, it.Price); err != nil {
			return model.Order{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return model.Order{}, err
	}
	o.ID = uint64(id)
	return o, nil
}

// GetByGatewayRef loads an order (without items) by gateway reference.
func (r *OrderRepo) GetByGatewayRef(ctx context.Context, ref string) (model.Order, error) {
	var o model.Order
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,gateway_ref,total_amount,created_at FROM orders WHERE gateway_ref=? LIMIT 1",
		ref).Scan(&o.ID, &o.UserID, &o.GatewayRef, &o.TotalAmount, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return o, ErrNotFound
	}
	return o, err
}

// SalesSummary aggregates the total number of orders and total revenue.
func (r *OrderRepo) SalesSummary(ctx context.Context) (sales uint64, revenue float64, err error) {
	err = r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(total_amount),0) FROM orders").Scan(&sales, &revenue)
	return
}

// DailySale is one day's aggregate used by the analytics endpoint.
type DailySale struct {
	Date    string  `json:"date"`
	Sales   uint64  `json:"sales"`
	Revenue float64 `json:"revenue"`
}

// DailySales returns per-day sales between from and to inclusive.  Days
// without orders are filled with zero rows so charts get a continuous
// series.
func (r *OrderRepo) DailySales(ctx context.Context, from, to time.Time) ([]DailySale, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT DATE_FORMAT(created_at, '%Y-%m-%d') AS day, COUNT(*), COALESCE(SUM(total_amount),0)
		 FROM orders
		 WHERE created_at BETWEEN ? AND ?
		 GROUP BY day
		 ORDER BY day`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byDay := map[string]DailySale{}
	for rows.Next() {
		var d DailySale
		if err := rows.Scan(&d.Date, &d.Sales, &d.Revenue); err != nil {
			return nil, err
		}
		byDay[d.Date] = d
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := []DailySale{}
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		if d, ok := byDay[key]; ok {
			out = append(out, d)
		} else {
			out = append(out, DailySale{Date: key})
		}
	}
	return out, nil
}
