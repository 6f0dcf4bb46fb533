package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-shop/internal/middleware"
	"github.com/iliyamo/online-shop/internal/model"
	"github.com/iliyamo/online-shop/internal/repository"
)

// CartStore is the slice of the cart repository the handlers use.
// *repository.CartRepo satisfies it; tests inject a fake.
type CartStore interface {
	Add(ctx context.Context, userID, productID uint64) error
	SetQuantity(ctx context.Context, userID, productID uint64, quantity uint32) error
	Remove(ctx context.Context, userID, productID uint64) error
	Clear(ctx context.Context, userID uint64) error
	List(ctx context.Context, userID uint64) ([]model.CartLine, error)
}

// CartHandler mutates the authenticated user's cart.  Concurrent edits to
// the same cart follow last-write-wins; only the per-line upsert is atomic.
type CartHandler struct {
	Carts CartStore
}

func NewCartHandler(carts CartStore) *CartHandler {
	if carts == nil {
		panic("nil cart store passed to NewCartHandler")
	}
	return &CartHandler{Carts: carts}
}

type cartMutationReq struct {
	ProductID uint64 `json:"product_id"`
}
type cartQuantityReq struct {
	Quantity *uint32 `json:"quantity"`
}

// List handles GET /v1/cart: the cart joined with product details.
func (h *CartHandler) List(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	lines, err := h.Carts.List(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "fetch cart failed"})
	}
	return c.JSON(http.StatusOK, lines)
}

// Add handles POST /v1/cart: adds one unit of a product, creating the line
// with quantity 1 or bumping an existing one.
func (h *CartHandler) Add(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req cartMutationReq
	if err := c.Bind(&req); err != nil || req.ProductID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product id is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Carts.Add(ctx, u.ID, req.ProductID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "add to cart failed"})
	}
	lines, err := h.Carts.List(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "fetch cart failed"})
	}
	return c.JSON(http.StatusOK, lines)
}

// UpdateQuantity handles PUT /v1/cart/:id where :id is the product ID.
// Setting quantity to zero removes the line; a line never survives with a
// quantity below one.
func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	var req cartQuantityReq
	if err := c.Bind(&req); err != nil || req.Quantity == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Carts.SetQuantity(ctx, u.ID, productID, *req.Quantity); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found in cart"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update cart failed"})
	}
	lines, err := h.Carts.List(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "fetch cart failed"})
	}
	return c.JSON(http.StatusOK, lines)
}

// Delete handles DELETE /v1/cart: with a product_id it removes that line,
// without one it clears the whole cart.
func (h *CartHandler) Delete(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req cartMutationReq
	_ = c.Bind(&req) // empty body means clear everything

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if req.ProductID == 0 {
		if err := h.Carts.Clear(ctx, u.ID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "clear cart failed"})
		}
	} else if err := h.Carts.Remove(ctx, u.ID, req.ProductID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove from cart failed"})
	}

	lines, err := h.Carts.List(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "fetch cart failed"})
	}
	return c.JSON(http.StatusOK, lines)
}
