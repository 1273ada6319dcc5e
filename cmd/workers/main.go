package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"docuflow/approval-portal/approval-portal-backend/internal/config"
	"docuflow/approval-portal/approval-portal-backend/internal/documents"
	"docuflow/approval-portal/approval-portal-backend/internal/notifications"
	"docuflow/approval-portal/approval-portal-backend/internal/notifications/websocket"
)

func main() {
	godotenv.Load()

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := sqlx.Connect("postgres", cfg.Database.GetDatabaseURL())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to initialize ORM", zap.Error(err))
	}

	docRepo := documents.NewRepository(db)

	wsManager := websocket.NewManager(logger)
	defer wsManager.Close()

	notificationService, err := notifications.NewService(gormDB, wsManager, docRepo, logger)
	if err != nil {
		logger.Fatal("Failed to initialize notifications", zap.Error(err))
	}

	workerCfg := DefaultReminderWorkerConfig()
	if cfg.Reminders.Schedule != "" {
		workerCfg.Schedule = cfg.Reminders.Schedule
	}
	if cfg.Reminders.Window > 0 {
		workerCfg.Window = cfg.Reminders.Window
	}

	worker := NewReminderWorker(docRepo, notificationService, logger, workerCfg)
	if err := worker.Start(); err != nil {
		logger.Fatal("Failed to start reminder worker", zap.Error(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	worker.Stop()
}
