// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// OrderConfirmedEvent is published once a payment is verified and the order
// persisted.  It carries enough for downstream consumers to notify or run
// analytics without querying the primary database.
type OrderConfirmedEvent struct {
    OrderID     uint64           `json:"order_id"`
    GatewayRef  string           `json:"gateway_ref"`
    UserID      uint64           `json:"user_id"`
    UserEmail   string           `json:"user_email"`
    TotalAmount float64          `json:"total_amount"`
    CouponCode  string           `json:"coupon_code,omitempty"`
    Items       []OrderEventItem `json:"items"`
    ConfirmedAt string           `json:"confirmed_at"`
}

// OrderEventItem is one purchased line inside the event payload.
type OrderEventItem struct {
    ProductID uint64  `json:"product_id"`
    Quantity  uint32  `json:"quantity"`
    Price     float64 `json:"price"`
}
