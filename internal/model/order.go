package model

import "time"

// Order models a confirmed purchase in the `orders` table.  GatewayRef is
// the order id assigned when the payment gateway order was created; the
// unique key on it makes payment confirmation idempotent.
type Order struct {
    ID          uint64      `json:"id"`
    UserID      uint64      `json:"user_id"`
    GatewayRef  string      `json:"gateway_ref"`
    TotalAmount float64     `json:"total_amount"`
    Items       []OrderItem `json:"items"`
    CreatedAt   time.Time   `json:"created_at"`
}

// OrderItem is one purchased line, priced at purchase time so later product
// edits do not rewrite history.
type OrderItem struct {
    ProductID uint64  `json:"product_id"`
    Quantity  uint32  `json:"quantity"`
    Price     float64 `json:"price"`
}
