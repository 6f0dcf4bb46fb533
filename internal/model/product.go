package model

import "time"

// Product models a row in the `products` table.  The image is stored as a
// URL pointing at the external object storage provider; the server never
// holds image bytes itself.
type Product struct {
    ID          uint64    `json:"id"`
    Name        string    `json:"name"`
    Description string    `json:"description"`
    Price       float64   `json:"price"`
    ImageURL    string    `json:"image_url"`
    Category    string    `json:"category"`
    IsFeatured  bool      `json:"is_featured"`
    CreatedAt   time.Time `json:"created_at"`
    UpdatedAt   time.Time `json:"updated_at"`
}
