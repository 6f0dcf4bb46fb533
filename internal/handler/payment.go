package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-shop/internal/config"
	"github.com/iliyamo/online-shop/internal/middleware"
	"github.com/iliyamo/online-shop/internal/model"
	"github.com/iliyamo/online-shop/internal/payment"
	"github.com/iliyamo/online-shop/internal/queue"
	"github.com/iliyamo/online-shop/internal/repository"
	"github.com/iliyamo/online-shop/internal/service/queue_publisher"
	"github.com/iliyamo/online-shop/internal/utils"
)

// Orders above this total earn a gift coupon for the next purchase.
const giftCouponThreshold = 20000.0

// OrderStore persists confirmed orders. *repository.OrderRepo satisfies it.
type OrderStore interface {
	Create(ctx context.Context, o model.Order) (model.Order, error)
}

// PaymentHandler drives checkout: opening a gateway order and confirming a
// settled payment.  The gateway is trusted only through its status API;
// totals are always recomputed server-side.
type PaymentHandler struct {
	Cfg     config.Config
	Coupons CouponStore
	Orders  OrderStore
	Carts   CartStore
	Gateway payment.Gateway
	// Publish emits the order-confirmed event; swapped out in tests.
	Publish func(ctx context.Context, ev queue.OrderConfirmedEvent) error
}

func NewPaymentHandler(cfg config.Config, coupons CouponStore, orders OrderStore, carts CartStore, gw payment.Gateway) *PaymentHandler {
	if coupons == nil || orders == nil || carts == nil || gw == nil {
		panic("nil dependency passed to NewPaymentHandler")
	}
	return &PaymentHandler{
		Cfg:     cfg,
		Coupons: coupons,
		Orders:  orders,
		Carts:   carts,
		Gateway: gw,
		Publish: queue_publisher.PublishOrderConfirmed,
	}
}

type checkoutItem struct {
	ID       uint64  `json:"id"`
	Price    float64 `json:"price"`
	Quantity uint32  `json:"quantity"`
}
type createOrderReq struct {
	Products   []checkoutItem `json:"products"`
	CouponCode string         `json:"coupon_code"`
}
type confirmReq struct {
	OrderID    string         `json:"order_id"`
	Products   []checkoutItem `json:"products"`
	CouponCode string         `json:"coupon_code"`
}

// orderTotal recomputes the order total server-side and applies the user's
// coupon when it is active and unexpired.  The caller decides whether
// discovery of an expired coupon should deactivate it.
func (h *PaymentHandler) orderTotal(ctx context.Context, userID uint64, items []checkoutItem, code string) (total float64, applied *model.Coupon, err error) {
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	if code == "" {
		return total, nil, nil
	}
	coupon, err := h.Coupons.GetActiveByCode(ctx, code, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return total, nil, nil // unknown coupon is ignored, not fatal
		}
		return 0, nil, err
	}
	if coupon.Expired(time.Now().UTC()) {
		_ = h.Coupons.Deactivate(ctx, coupon.Code, userID)
		return total, nil, nil
	}
	discount := total * float64(coupon.DiscountPercentage) / 100
	total -= math.Round(discount)
	return total, &coupon, nil
}

// CreateOrder handles POST /v1/payments/create-order: opens a checkout
// session at the gateway for the (server-computed) order total.
func (h *PaymentHandler) CreateOrder(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createOrderReq
	if err := c.Bind(&req); err != nil || len(req.Products) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or empty products array"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	total, _, err := h.orderTotal(ctx, u.ID, req.Products, req.CouponCode)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "apply coupon failed"})
	}

	gatewayRef := fmt.Sprintf("order_%d", time.Now().UnixMilli())
	returnURL := fmt.Sprintf("%s/purchase-result?order_id=%s&coupon=%s",
		h.Cfg.FrontendURL, gatewayRef, url.QueryEscape(req.CouponCode))

	resp, err := h.Gateway.CreateOrder(ctx, payment.CreateOrderRequest{
		OrderID:       gatewayRef,
		Amount:        total,
		Currency:      "INR",
		CustomerID:    strconv.FormatUint(u.ID, 10),
		CustomerEmail: u.Email,
		CustomerName:  u.Name,
		ReturnURL:     returnURL,
	})
	if err != nil {
		log.Printf("payment: gateway order creation failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "order creation failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"order_id":     gatewayRef,
		"session_id":   resp.SessionID,
		"payment_link": resp.PaymentLink,
		"total_amount": total,
		"coupon_code":  req.CouponCode,
		"products":     req.Products,
	})
}

// Confirm handles POST /v1/payments/confirm.  The gateway's order status is
// verified server-to-server; only a PAID order is persisted.  Confirming
// the same gateway order twice is idempotent at the order table.
func (h *PaymentHandler) Confirm(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req confirmReq
	if err := c.Bind(&req); err != nil || req.OrderID == "" || len(req.Products) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "order_id and products are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	status, err := h.Gateway.GetOrder(ctx, req.OrderID)
	if err != nil {
		log.Printf("payment: gateway verification failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment verification failed"})
	}
	if !status.Paid {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"status":  status.Status,
			"message": "payment not completed, please try again",
		})
	}

	total, applied, err := h.orderTotal(ctx, u.ID, req.Products, req.CouponCode)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "apply coupon failed"})
	}
	if applied != nil {
		if err := h.Coupons.Deactivate(ctx, applied.Code, u.ID); err != nil {
			log.Printf("payment: deactivate coupon %s failed: %v", applied.Code, err)
		}
	}

	items := make([]model.OrderItem, 0, len(req.Products))
	for _, it := range req.Products {
		items = append(items, model.OrderItem{ProductID: it.ID, Quantity: it.Quantity, Price: it.Price})
	}
	order, err := h.Orders.Create(ctx, model.Order{
		UserID:      u.ID,
		GatewayRef:  req.OrderID,
		TotalAmount: total,
		Items:       items,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save order failed"})
	}

	// The purchase is committed; everything below is best-effort cleanup.
	if err := h.Carts.Clear(ctx, u.ID); err != nil {
		log.Printf("payment: clear cart for user %d failed: %v", u.ID, err)
	}

	ev := queue.OrderConfirmedEvent{
		OrderID:     order.ID,
		GatewayRef:  order.GatewayRef,
		UserID:      u.ID,
		UserEmail:   u.Email,
		TotalAmount: total,
		CouponCode:  req.CouponCode,
		ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
	}
	for _, it := range items {
		ev.Items = append(ev.Items, queue.OrderEventItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	if err := h.Publish(ctx, ev); err != nil {
		log.Printf("payment: publish order event failed: %v", err)
	}

	if total >= giftCouponThreshold {
		h.issueGiftCoupon(ctx, u.ID)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"message":  "payment verified and order placed",
		"order_id": order.ID,
	})
}

// issueGiftCoupon rewards a qualifying purchase with a 10% coupon valid for
// 30 days, replacing whatever coupon the user held.  Failure only costs the
// reward, never the order.
func (h *PaymentHandler) issueGiftCoupon(ctx context.Context, userID uint64) {
	code, err := utils.NewCouponCode(6)
	if err != nil {
		log.Printf("payment: generate gift coupon code failed: %v", err)
		return
	}
	_, err = h.Coupons.Replace(ctx, model.Coupon{
		Code:               code,
		DiscountPercentage: 10,
		ExpiresAt:          time.Now().UTC().Add(30 * 24 * time.Hour),
		UserID:             userID,
	})
	if err != nil {
		log.Printf("payment: create gift coupon for user %d failed: %v", userID, err)
	}
}
