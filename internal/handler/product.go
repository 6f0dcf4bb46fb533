package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-shop/internal/cache"
	"github.com/iliyamo/online-shop/internal/model"
	"github.com/iliyamo/online-shop/internal/repository"
)

// ProductHandler serves the catalog: public browse endpoints plus the
// admin-only mutations.  Admin routes are guarded by the Authenticate +
// RequireAdmin chain in the router; handlers here assume it already ran.
type ProductHandler struct {
	Products *repository.ProductRepo
	Cache    *cache.ProductCache
}

func NewProductHandler(products *repository.ProductRepo, productCache *cache.ProductCache) *ProductHandler {
	if products == nil {
		panic("nil repository passed to NewProductHandler")
	}
	return &ProductHandler{Products: products, Cache: productCache}
}

type createProductReq struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	Category    string  `json:"category"`
}

// List handles GET /v1/products (admin): the full catalog.
func (h *ProductHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	products, err := h.Products.All(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "fetch products failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

// Create handles POST /v1/products (admin).  The image, if any, is already
// sitting in object storage; only its URL travels through here.
func (h *ProductHandler) Create(c echo.Context) error {
	var req createProductReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == "" || req.Description == "" || req.Price <= 0 || req.Category == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing required product fields"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Products.Create(ctx, model.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create product failed"})
	}
	return c.JSON(http.StatusCreated, p)
}

// Delete handles DELETE /v1/products/:id (admin).  The stored image is left
// to the object storage provider's lifecycle rules.
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete product failed"})
	}
	// The deleted product may have been featured.
	h.Cache.InvalidateFeatured(ctx)
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted successfully"})
}

// ToggleFeatured handles PATCH /v1/products/:id (admin): flips the featured
// flag and refreshes the cache so the storefront reflects it immediately.
func (h *ProductHandler) ToggleFeatured(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Products.ToggleFeatured(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update product failed"})
	}
	h.refreshFeaturedCache(ctx)
	return c.JSON(http.StatusOK, p)
}

// Featured handles GET /v1/products/featured (public), read-through cached.
func (h *ProductHandler) Featured(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if cached, ok := h.Cache.GetFeatured(ctx); ok {
		return c.JSON(http.StatusOK, cached)
	}
	products, err := h.Products.Featured(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "fetch featured products failed"})
	}
	if len(products) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no featured products found"})
	}
	h.Cache.SetFeatured(ctx, products)
	return c.JSON(http.StatusOK, products)
}

// ByCategory handles GET /v1/products/category/:category (public).
func (h *ProductHandler) ByCategory(c echo.Context) error {
	category := c.Param("category")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	products, err := h.Products.ByCategory(ctx, category)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "fetch products failed"})
	}
	if len(products) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no products found for category: " + category})
	}
	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

// Recommendations handles GET /v1/products/recommendations (public): a
// small random sample of the catalog.
func (h *ProductHandler) Recommendations(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	products, err := h.Products.Random(ctx, 4)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "fetch recommendations failed"})
	}
	return c.JSON(http.StatusOK, products)
}

// refreshFeaturedCache rewrites the cached featured list after a mutation.
// Failures only cost cache freshness, never the request.
func (h *ProductHandler) refreshFeaturedCache(ctx context.Context) {
	products, err := h.Products.Featured(ctx)
	if err != nil {
		return
	}
	h.Cache.SetFeatured(ctx, products)
}
