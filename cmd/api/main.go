package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cartapi/internal/cartstore"
	"cartapi/internal/config"
	"cartapi/internal/domain/model"
	"cartapi/internal/handler"
	"cartapi/internal/infra/db"
	infraRepo "cartapi/internal/infra/repository"
	"cartapi/internal/logger"
	"cartapi/internal/middleware"
	repo "cartapi/internal/repository"
	"cartapi/internal/server"
	"cartapi/internal/usecase"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.GoEnv, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//Repository生成（DBが無ければメモリ）
	products, orders, err := buildRepositories(ctx, cfg, log)
	if err != nil {
		return err
	}

	//カートはセッションごと
	carts := cartstore.NewRegistry(cfg.CartIdleTTL)
	payments := usecase.NewSimulatedPaymentProcessor(cfg.PaymentDelay, cfg.PaymentMethods, cfg.PaymentMaxAmount)

	//Usecase生成
	productUC := usecase.NewProductUsecase(products, log)
	cartUC := usecase.NewCartUsecase(carts, products, log)
	checkoutUC := usecase.NewCheckoutUsecase(carts, payments, orders, log)

	//Handler生成
	e := server.NewRouter(log, middleware.SessionOptions{
		JWTSecret:    cfg.JWTSecret,
		CookieTTL:    cfg.CartIdleTTL,
		CookieSecure: cfg.GoEnv == "prod",
	}, server.Handlers{
		Products:      handler.NewProductHandler(productUC),
		AdminProducts: handler.NewAdminProductHandler(productUC),
		Cart:          handler.NewCartHandler(cartUC),
		Checkout:      handler.NewCheckoutHandler(checkoutUC),
	})

	//Server起動
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server started", zap.String("addr", cfg.Addr()))
		return server.Start(gctx, e, cfg.Addr(), cfg.ShutdownTimeout)
	})
	g.Go(func() error {
		return carts.Run(gctx, cfg.CartSweepInterval, func(removed int) {
			log.Info("idle carts swept", zap.Int("removed", removed), zap.Int("remaining", carts.Len()))
		})
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped", zap.Error(err))
		return err
	}
	log.Info("server stopped")
	return nil
}

func buildRepositories(ctx context.Context, cfg config.Config, log *zap.Logger) (repo.ProductRepository, repo.OrderRepository, error) {
	if !cfg.UseDatabase() {
		log.Warn("no database configured, using in-memory catalog and orders")
		var seed []model.Product
		if cfg.SeedDemoProducts {
			seed = infraRepo.DemoProducts()
		}
		return infraRepo.NewProductMemoryRepository(seed), infraRepo.NewOrderMemoryRepository(), nil
	}

	//DB接続
	gormDB, err := db.Connect(ctx, db.Options{
		DSN:          cfg.DSN(),
		MaxOpenConns: 25,
		MaxIdleConns: 25,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := gormDB.AutoMigrate(
		&model.Product{},
		&model.Order{},
		&model.OrderLine{},
	); err != nil {
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}

	productRepo := infraRepo.NewProductGormRepository(gormDB)
	if cfg.SeedDemoProducts {
		if err := productRepo.Seed(ctx, infraRepo.DemoProducts()); err != nil {
			return nil, nil, fmt.Errorf("seed products: %w", err)
		}
	}
	log.Info("database connected")

	return productRepo, infraRepo.NewOrderGormRepository(gormDB), nil
}
