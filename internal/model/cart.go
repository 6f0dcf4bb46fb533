package model

// CartItem is one line of a user's cart: a product reference plus a
// positive quantity.  The unique key on (user_id, product_id) means a user
// holds at most one line per product; a quantity that would drop below one
// removes the line instead.
type CartItem struct {
    ID        uint64 `json:"id"`
    UserID    uint64 `json:"-"`
    ProductID uint64 `json:"product_id"`
    Quantity  uint32 `json:"quantity"`
}

// CartLine is a cart item joined with its product details, as returned by
// the cart listing endpoint.
type CartLine struct {
    Product
    Quantity uint32 `json:"quantity"`
}
