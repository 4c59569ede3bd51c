package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tiendaonline/storefront/internal/config"
	"github.com/tiendaonline/storefront/internal/httpx"
	kafkax "github.com/tiendaonline/storefront/internal/kafka"
	"github.com/tiendaonline/storefront/internal/orders"
	"github.com/tiendaonline/storefront/internal/postgres"
	"github.com/tiendaonline/storefront/internal/redisx"
)

func main() {
	log, _ := zap.NewProduction()
	defer func() { _ = log.Sync() }()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.MigrateOnStart {
		if err := postgres.Migrate(cfg.PostgresDSN); err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
	}

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024, log)
	prod.Start(ctx)

	repo := &orders.Repo{DB: db}
	router := httpx.NewRouter()
	(&httpx.ProductsHandler{Repo: repo, Redis: rdb, Log: log}).Register(router)
	(&httpx.OrdersHandler{
		Repo:     repo,
		Producer: prod,
		Redis:    rdb,
		Log:      log,
		Service:  cfg.ServiceName,
	}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("servidor escuchando", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	// stop accepting events, let the writer flush, then release the loop context
	prod.Close()
	prod.WaitClosed()
	cancel()
}
