package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-shop/internal/handler"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check used by
// load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the authentication endpoints.  Signup, login, refresh
// and logout live under /v1/auth and are rate limited; /v1/auth/profile sits
// behind the authenticate middleware because it must resolve the caller.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, rateLimit, authenticate echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", rateLimit)
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)
	// Refresh rotates nothing: it exchanges a valid stored refresh token for
	// a fresh access token only.
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
	g.GET("/profile", a.Profile, authenticate)
}

// RegisterCatalog wires the product endpoints.  Browse routes are public;
// management routes require an authenticated admin.
func RegisterCatalog(e *echo.Echo, p *handler.ProductHandler, authenticate, requireAdmin echo.MiddlewareFunc) {
	e.GET("/v1/products/featured", p.Featured)
	e.GET("/v1/products/category/:category", p.ByCategory)
	e.GET("/v1/products/recommendations", p.Recommendations)

	admin := e.Group("/v1/products", authenticate, requireAdmin)
	admin.GET("", p.List)
	admin.POST("", p.Create)
	admin.DELETE("/:id", p.Delete)
	admin.PATCH("/:id", p.ToggleFeatured)
}

// RegisterShop wires the endpoints a signed-in customer uses: cart, coupon
// and payment.  Every route runs behind the authenticate middleware.
func RegisterShop(e *echo.Echo, cart *handler.CartHandler, coupon *handler.CouponHandler, pay *handler.PaymentHandler, authenticate echo.MiddlewareFunc) {
	g := e.Group("/v1", authenticate)

	g.GET("/cart", cart.List)
	g.POST("/cart", cart.Add)
	g.PUT("/cart/:id", cart.UpdateQuantity)
	g.DELETE("/cart", cart.Delete)

	g.GET("/coupons", coupon.Get)
	g.POST("/coupons/validate", coupon.Validate)

	g.POST("/payments/create-order", pay.CreateOrder)
	g.POST("/payments/confirm", pay.Confirm)
}

// RegisterAnalytics wires the admin dashboard endpoint.
func RegisterAnalytics(e *echo.Echo, a *handler.AnalyticsHandler, authenticate, requireAdmin echo.MiddlewareFunc) {
	e.GET("/v1/analytics", a.Dashboard, authenticate, requireAdmin)
}
