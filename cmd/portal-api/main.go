package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"docuflow/approval-portal/approval-portal-backend/internal/auth"
	"docuflow/approval-portal/approval-portal-backend/internal/comparison"
	"docuflow/approval-portal/approval-portal-backend/internal/config"
	"docuflow/approval-portal/approval-portal-backend/internal/dashboard"
	"docuflow/approval-portal/approval-portal-backend/internal/documents"
	"docuflow/approval-portal/approval-portal-backend/internal/notifications"
	"docuflow/approval-portal/approval-portal-backend/internal/notifications/websocket"
	"docuflow/approval-portal/approval-portal-backend/internal/users"
	"docuflow/approval-portal/approval-portal-backend/internal/workflow"
	"docuflow/approval-portal/approval-portal-backend/pkg/storage"
	"docuflow/approval-portal/approval-portal-backend/pkg/textdiff"
)

func main() {
	godotenv.Load()

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging.Level)
	defer logger.Sync()

	// Database
	dbURL := cfg.Database.GetDatabaseURL()
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.Database.MaxConnections)
	}
	if cfg.Database.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}

	// Notifications ride on gorm over the same database.
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to initialize ORM", zap.Error(err))
	}

	// Blob storage
	blobs, err := storage.NewFilesystemStore(cfg.Storage.Dir)
	if err != nil {
		logger.Fatal("Failed to initialize blob storage", zap.Error(err))
	}

	// Users and auth
	userRepo := users.NewRepository(db)
	userService := users.NewService(userRepo)
	userHandler := users.NewHandler(userService, logger)

	authService := auth.NewService(userService, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authHandler := auth.NewHandler(authService, logger)

	// Documents
	docRepo := documents.NewRepository(db)
	docStorage := documents.NewStorageProvider(blobs)
	docService := documents.NewService(docRepo, docStorage)
	docHandler := documents.NewHandler(docService, logger)

	// Notifications
	wsManager := websocket.NewManager(logger)
	defer wsManager.Close()

	notificationService, err := notifications.NewService(gormDB, wsManager, docRepo, logger)
	if err != nil {
		logger.Fatal("Failed to initialize notifications", zap.Error(err))
	}
	notificationHandler := notifications.NewHandler(notificationService, wsManager, logger)

	// Workflow
	resolver := workflow.NewDepartmentLadderResolver(userService)
	engine := workflow.NewEngine(docRepo, userService, resolver, notificationService, logger)
	workflowHandler := workflow.NewHandler(engine, logger)

	// Version comparison
	diffEngine := textdiff.NewEngine(cfg.Diff.MaxContentBytes)
	comparisonService := comparison.NewService(docRepo, docService, diffEngine)
	comparisonHandler := comparison.NewHandler(comparisonService, logger)

	// Dashboard
	dashboardRepo := dashboard.NewRepository(db)
	dashboardService := dashboard.NewService(dashboardRepo)
	dashboardHandler := dashboard.NewHandler(dashboardService, logger)

	// Router
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(corsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	api := router.Group("/api/v1")
	api.Use(auth.Middleware(authService))
	{
		authHandler.RegisterRoutes(router, api)
		userHandler.RegisterRoutes(api)
		docHandler.RegisterRoutes(api)
		workflowHandler.RegisterRoutes(api)
		comparisonHandler.RegisterRoutes(api)
		notificationHandler.RegisterRoutes(api)
		dashboardHandler.RegisterRoutes(api)
	}

	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", srv.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

func newLogger(level string) *zap.Logger {
	var logger *zap.Logger
	var err error
	if level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
