package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-shop/internal/middleware"
	"github.com/iliyamo/online-shop/internal/model"
	"github.com/iliyamo/online-shop/internal/repository"
)

// CouponStore is the slice of the coupon repository the handlers use.
// *repository.CouponRepo satisfies it; tests inject a fake.
type CouponStore interface {
	ActiveForUser(ctx context.Context, userID uint64) (model.Coupon, error)
	GetActiveByCode(ctx context.Context, code string, userID uint64) (model.Coupon, error)
	Deactivate(ctx context.Context, code string, userID uint64) error
	Replace(ctx context.Context, c model.Coupon) (model.Coupon, error)
}

// CouponHandler serves the user's coupon: fetch and validate.  A coupon's
// validity mirrors the refresh token pattern: stored state plus expiry,
// flipped inactive once spent or discovered expired.
type CouponHandler struct {
	Coupons CouponStore
}

func NewCouponHandler(coupons CouponStore) *CouponHandler {
	if coupons == nil {
		panic("nil coupon store passed to NewCouponHandler")
	}
	return &CouponHandler{Coupons: coupons}
}

type validateCouponReq struct {
	Code string `json:"code"`
}

// Get handles GET /v1/coupons: the user's active coupon, or null.
func (h *CouponHandler) Get(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	coupon, err := h.Coupons.ActiveForUser(ctx, u.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusOK, nil)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "fetch coupon failed"})
	}
	return c.JSON(http.StatusOK, coupon)
}

// Validate handles POST /v1/coupons/validate.  An expired coupon is
// deactivated on discovery and reported the same as a missing one.
func (h *CouponHandler) Validate(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req validateCouponReq
	if err := c.Bind(&req); err != nil || req.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "coupon code is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	coupon, err := h.Coupons.GetActiveByCode(ctx, req.Code, u.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "coupon not found or not active"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "fetch coupon failed"})
	}
	if coupon.Expired(time.Now().UTC()) {
		if err := h.Coupons.Deactivate(ctx, coupon.Code, u.ID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update coupon failed"})
		}
		return c.JSON(http.StatusNotFound, echo.Map{"error": "coupon expired"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":             "coupon is valid",
		"code":                coupon.Code,
		"discount_percentage": coupon.DiscountPercentage,
	})
}
