package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/online-shop/internal/model"
)

const featuredKey = "featured_products"

// ProductCache keeps the featured product list in Redis so the storefront's
// hottest read skips MySQL.  A nil client disables caching; every method
// degrades to a miss or a no-op so the handler path stays identical.
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProductCache(rdb *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{rdb: rdb, ttl: ttl}
}

// GetFeatured returns the cached featured products.  ok is false on a miss,
// a disabled cache, or any Redis/decoding failure.
func (p *ProductCache) GetFeatured(ctx context.Context) ([]model.Product, bool) {
	if p == nil || p.rdb == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	raw, err := p.rdb.Get(ctx, featuredKey).Bytes()
	if err != nil {
		return nil, false
	}
	var out []model.Product
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false
	}
	return out, true
}

// SetFeatured stores the featured product list.  Failures are swallowed;
// the cache is an optimization, never a source of truth.
func (p *ProductCache) SetFeatured(ctx context.Context, products []model.Product) {
	if p == nil || p.rdb == nil {
		return
	}
	raw, err := json.Marshal(products)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	_ = p.rdb.Set(ctx, featuredKey, raw, p.ttl).Err()
}

// InvalidateFeatured drops the cached list after a catalog mutation.
func (p *ProductCache) InvalidateFeatured(ctx context.Context) {
	if p == nil || p.rdb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	_ = p.rdb.Del(ctx, featuredKey).Err()
}
