package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledgerdesk/internal/config"
	"ledgerdesk/internal/database"
	"ledgerdesk/internal/logger"
	"ledgerdesk/internal/services"
)

// The worker promotes due scheduled invoices into real invoices on a
// fixed tick. It shares the API's database and service wiring but runs
// as a separate process so a slow generation pass never blocks request
// handling.
func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	db := dbManager.DB()
	categoryService := services.NewCategoryService(db)
	methodService := services.NewMethodService(db)
	storageService := services.NewStorageService(db)
	transactionService := services.NewTransactionService(db, categoryService, methodService, storageService)
	customerService := services.NewCustomerService(db)
	invoiceService := services.NewInvoiceService(db, customerService, transactionService)
	scheduleService := services.NewScheduleService(db, customerService, invoiceService)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infow("scheduled invoice worker started", "interval", appConfig.WorkerInterval.String())

	ticker := time.NewTicker(appConfig.WorkerInterval)
	defer ticker.Stop()

	// Run one pass immediately so a restart never delays due invoices
	// by a full interval.
	processTick(ctx, scheduleService)

	for {
		select {
		case <-ctx.Done():
			log.Info("scheduled invoice worker stopping")
			return nil
		case <-ticker.C:
			processTick(ctx, scheduleService)
		}
	}
}

func processTick(ctx context.Context, scheduleService services.ScheduleServicer) {
	log := logger.Get()
	generated, err := scheduleService.ProcessDue(ctx, time.Now())
	if err != nil {
		log.Errorw("schedule processing pass failed", "error", err)
		return
	}
	log.Infow("schedule processing pass complete", "invoices_generated", generated)
}
