package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/online-shop/internal/auth"
	"github.com/iliyamo/online-shop/internal/cache"
	"github.com/iliyamo/online-shop/internal/config"
	"github.com/iliyamo/online-shop/internal/database"
	"github.com/iliyamo/online-shop/internal/handler"
	"github.com/iliyamo/online-shop/internal/middleware"
	"github.com/iliyamo/online-shop/internal/payment"
	"github.com/iliyamo/online-shop/internal/queue"
	"github.com/iliyamo/online-shop/internal/repository"
	"github.com/iliyamo/online-shop/internal/router"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()
	if err := database.EnsureSchema(db); err != nil {
		log.Fatalf("schema migration failed: %v", err)
	}

	// Redis is optional: without it refresh tokens degrade gracefully and
	// the featured-products cache and rate limiter turn themselves off.
	rdb := config.NewRedisClient()
	sessions := cache.NewSessionStore(rdb)
	products := cache.NewProductCache(rdb, 10*time.Minute)

	tokens := auth.NewTokenService(
		cfg.AccessSecret, cfg.RefreshSecret,
		time.Duration(cfg.AccessTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTTLDays)*24*time.Hour,
		sessions,
	)

	userRepo := repository.NewUserRepo(db)
	productRepo := repository.NewProductRepo(db)
	cartRepo := repository.NewCartRepo(db)
	couponRepo := repository.NewCouponRepo(db)
	orderRepo := repository.NewOrderRepo(db)

	gateway := payment.NewClient(cfg.PaymentBaseURL, cfg.PaymentKey, cfg.PaymentSecret)

	authHandler := handler.NewAuthHandler(cfg, userRepo, tokens)
	productHandler := handler.NewProductHandler(productRepo, products)
	cartHandler := handler.NewCartHandler(cartRepo)
	couponHandler := handler.NewCouponHandler(couponRepo)
	paymentHandler := handler.NewPaymentHandler(cfg, couponRepo, orderRepo, cartRepo, gateway)
	analyticsHandler := handler.NewAnalyticsHandler(userRepo, productRepo, orderRepo)

	authenticate := middleware.Authenticate(tokens, userRepo)
	requireAdmin := middleware.RequireAdmin()
	rateLimit := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	// A panic in any handler surfaces as a plain 500, never a crashed worker.
	e.Use(echomw.Recover())
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, rateLimit, authenticate)
	router.RegisterCatalog(e, productHandler, authenticate, requireAdmin)
	router.RegisterShop(e, cartHandler, couponHandler, paymentHandler, authenticate)
	router.RegisterAnalytics(e, analyticsHandler, authenticate, requireAdmin)

	// The consumer reconnects on its own; a missing broker only disables
	// the order log, never the API.
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
