package main

import (
	"os"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"homeval/server/config"
	"homeval/server/internal/api"
	"homeval/server/internal/database"
	"homeval/server/internal/engine"
	"homeval/server/internal/insight"
	"homeval/server/internal/metrics"
	"homeval/server/internal/rollup"
	"homeval/server/internal/scheduler"
	"homeval/server/internal/tenant"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// Get the current working directory
	currentDir, err := os.Getwd()
	if err != nil {
		logger.WithError(err).Fatal("Failed to get current directory")
	}

	dbPath := filepath.Join(currentDir, cfg.Server.DBPath)
	logger.Infof("Using database at: %s", dbPath)

	// Initialize database
	db, err := database.NewDatabase(dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	// Run database migrations
	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// Separate gorm handle for the rollup snapshot writer
	gdb, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		logger.WithError(err).Fatal("Failed to open gorm database")
	}

	metrics.Register()

	// Wire the estimation engine
	tenants := tenant.NewCachedStore(db, cfg.TenantCache.TTL)
	narrator := insight.NewClient(cfg, logger)
	eng := engine.New(db, tenants, narrator, cfg, logger)

	// Aggregate rollup runner and its schedule
	runner := rollup.NewRunner(gdb, db, cfg, logger)
	sched := scheduler.NewScheduler(runner, cfg, logger)
	sched.Start()
	defer sched.Stop()

	// Initialize router
	router := gin.Default()
	router.Use(cors.Default())

	handler := api.NewHandler(eng, db, runner, logger)
	api.SetupRoutes(router, handler)

	logger.Infof("Starting server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
