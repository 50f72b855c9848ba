package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/api-sage/banking-ledger/internal/adapter/http/controller"
	"github.com/api-sage/banking-ledger/internal/adapter/http/router"
	"github.com/api-sage/banking-ledger/internal/adapter/repository/postgres"
	"github.com/api-sage/banking-ledger/internal/config"
	"github.com/api-sage/banking-ledger/internal/usecase/services"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Connect(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := postgres.RunMigrations(migrateCtx, db, cfg.MigrationsDir); err != nil {
		cancel()
		log.Fatalf("run migrations: %v", err)
	}
	cancel()

	customerRepo := postgres.NewCustomerRepository(db)
	accountRepo := postgres.NewAccountRepository(db)
	transferRepo := postgres.NewTransferRepository(db)
	txManager := postgres.NewTransactionManager(db)

	transferService := services.NewTransferService(
		transferRepo,
		accountRepo,
		txManager,
		cfg.SystemAccountNumber,
		cfg.MaxTransferAttempts,
		cfg.RetryBackoff,
	)
	accountService := services.NewAccountService(accountRepo, customerRepo, transferService)
	customerService := services.NewCustomerService(customerRepo)

	r := router.New(
		controller.NewCustomerController(customerService),
		controller.NewAccountController(accountService),
		controller.NewTransferController(transferService),
	)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Printf("server starting on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
