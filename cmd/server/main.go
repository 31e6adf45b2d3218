package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/warodomh/marketplace/internal/config"
	"github.com/warodomh/marketplace/internal/es"
	"github.com/warodomh/marketplace/internal/events"
	"github.com/warodomh/marketplace/internal/handlers"
	"github.com/warodomh/marketplace/internal/httpserver"
	"github.com/warodomh/marketplace/internal/logging"
	"github.com/warodomh/marketplace/internal/service/order"
	"github.com/warodomh/marketplace/internal/service/review"
	"github.com/warodomh/marketplace/internal/storage"
	"github.com/warodomh/marketplace/internal/token"
)

func main() {
	logger := logging.New(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	prod := events.NewProducer(cfg.KAFKA_ADDRESS)

	esClient, err := es.NewClient(cfg)
	if err != nil {
		logger.Warn("elasticsearch unavailable, search disabled", "error", err)
		esClient = nil
	}

	store := &storage.Storage{Root: cfg.UPLOAD_DIR, BaseURL: cfg.BASE_URL}
	tokens := &token.Service{
		DB:            db,
		JWTSecret:     []byte(cfg.JWT_SECRET),
		RefreshSecret: []byte(cfg.REFRESH_SECRET),
	}
	orders := &order.Service{DB: db, CommissionRate: cfg.COMMISSION_RATE}
	reviews := &review.Service{DB: db}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())

	deps := httpserver.Deps{
		DB:              db,
		Tokens:          tokens,
		AuthHandler:     &handlers.AuthHandler{DB: db, Tokens: tokens, Producer: prod},
		SellerHandler:   &handlers.SellerHandler{DB: db, Storage: store},
		ProductHandler:  &handlers.ProductHandler{DB: db, ES: esClient, Producer: prod, Storage: store},
		CategoryHandler: &handlers.CategoryHandler{DB: db},
		CartHandler:     &handlers.CartHandler{DB: db, Producer: prod},
		OrderHandler:    &handlers.OrderHandler{DB: db, Orders: orders, Producer: prod},
		PaymentHandler:  &handlers.PaymentHandler{DB: db, Orders: orders, PromptPayID: cfg.PROMPTPAY_ID},
		ReviewHandler:   &handlers.ReviewHandler{Reviews: reviews},
		AddressHandler:  &handlers.AddressHandler{DB: db},
		LocationHandler: &handlers.LocationHandler{DB: db, Storage: store},
		ContentHandler:  &handlers.ContentHandler{DB: db},
		SearchHandler:   &handlers.SearchHandler{ES: esClient},
		UploadDir:       cfg.UPLOAD_DIR,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
