package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-shop/internal/repository"
)

// AnalyticsHandler serves the admin dashboard numbers: headline counters
// plus a per-day sales series for the trailing week.
type AnalyticsHandler struct {
	Users    *repository.UserRepo
	Products *repository.ProductRepo
	Orders   *repository.OrderRepo
}

func NewAnalyticsHandler(users *repository.UserRepo, products *repository.ProductRepo, orders *repository.OrderRepo) *AnalyticsHandler {
	if users == nil || products == nil || orders == nil {
		panic("nil repository passed to NewAnalyticsHandler")
	}
	return &AnalyticsHandler{Users: users, Products: products, Orders: orders}
}

// Dashboard handles GET /v1/analytics (admin only).
func (h *AnalyticsHandler) Dashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userCount, err := h.Users.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "fetch analytics failed"})
	}
	productCount, err := h.Products.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "fetch analytics failed"})
	}
	sales, revenue, err := h.Orders.SalesSummary(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "fetch analytics failed"})
	}

	to := time.Now().UTC()
	daily, err := h.Orders.DailySales(ctx, to.AddDate(0, 0, -6), to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "fetch analytics failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"analyticsData": echo.Map{
			"users":        userCount,
			"products":     productCount,
			"totalSales":   sales,
			"totalRevenue": revenue,
		},
		"dailySalesData": daily,
	})
}
