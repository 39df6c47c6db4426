package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/minhtran205/fashion-shop/internal/cache"
	"github.com/minhtran205/fashion-shop/internal/config"
	"github.com/minhtran205/fashion-shop/internal/es"
	"github.com/minhtran205/fashion-shop/internal/handlers"
	"github.com/minhtran205/fashion-shop/internal/handlers/cart"
	"github.com/minhtran205/fashion-shop/internal/logging"
	"github.com/minhtran205/fashion-shop/internal/mykafka"
	"github.com/minhtran205/fashion-shop/internal/search"
	"github.com/minhtran205/fashion-shop/internal/service/order"
	httpserver "github.com/minhtran205/fashion-shop/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)

	var prod *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		brokers := []string{configuration.KAFKA_ADDRESS}
		topics := []string{"user_events", "product_events", "cart_events", "order_events"}
		prod, err = mykafka.NewProducer(brokers, topics)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		log.Println("KAFKA_ADDRESS not set, event publishing disabled")
	}

	productHandler := &handlers.ProductHandler{DB: db, Producer: prod, ESIndex: search.ProductIndex}
	var searchHandler *handlers.SearchHandler
	if configuration.ES_URL != "" {
		client, err := es.NewClient(configuration)
		if err != nil {
			log.Fatal(err)
		}
		productHandler.ES = client
		searchHandler = &handlers.SearchHandler{ES: client, Index: search.ProductIndex}
	} else {
		log.Println("ES_URL not set, product search disabled")
	}

	var statsCache *cache.Cache
	if configuration.REDIS_ADDR != "" {
		statsCache = cache.New(configuration.REDIS_ADDR)
	} else {
		log.Println("REDIS_ADDR not set, dashboard cache disabled")
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.CORS())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := logging.IntoContext(req.Context(), logger)
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	})

	deps := httpserver.Deps{
		DB:               db,
		JWTSecret:        jwtSecret,
		AuthHandler:      &handlers.AuthHandler{DB: db, JWTSecret: jwtSecret, Producer: prod},
		UserHandler:      &handlers.UserHandler{DB: db, JWTSecret: jwtSecret},
		ProductHandler:   productHandler,
		CategoryHandler:  &handlers.CategoryHandler{DB: db},
		CartHandler:      &cart.CartHandler{DB: db, Producer: prod},
		OrderHandler:     &handlers.OrderHandler{Svc: order.NewService(db), Producer: prod},
		DashboardHandler: &handlers.DashboardHandler{DB: db, Cache: statsCache},
		SearchHandler:    searchHandler,
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if prod != nil {
		if err := prod.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}
	if statsCache != nil {
		if err := statsCache.Close(); err != nil {
			log.Printf("redis close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}
