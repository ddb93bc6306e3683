package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/viajante/internal/config"
	"github.com/diewo77/viajante/internal/db"
	"github.com/diewo77/viajante/internal/logging"
	"github.com/diewo77/viajante/internal/services"
	"github.com/diewo77/viajante/internal/workbook"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	importFlag      = flag.String("import", "", "Import the given .xlsx file and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	dbConn, err := db.Open(cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer closeDB(dbConn)

	if *migrateOnlyFlag {
		if err := db.Migrate(dbConn); err != nil {
			logging.Fatal().Err(err).Msg("migration failed")
		}
		logging.Info().Msg("migrations completed successfully")
		return
	}

	// Run migrations on startup if enabled
	if cfg.App.Migrations {
		if err := db.Migrate(dbConn); err != nil {
			logging.Fatal().Err(err).Msg("migration failed")
		}
		logging.Info().Msg("migrations completed")
	}

	if *importFlag != "" {
		if err := importFile(dbConn, *importFlag); err != nil {
			logging.Fatal().Err(err).Str("file", *importFlag).Msg("import failed")
		}
		return
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      NewApp(dbConn, cfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logging.Info().Str("addr", srv.Addr).Bool("dev", cfg.App.Dev).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info().Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("error during shutdown")
	}
	logging.Info().Msg("server stopped gracefully")
}

// importFile loads a spreadsheet from disk the same way POST /importar does.
func importFile(conn *gorm.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	wb, err := workbook.Parse(f)
	if err != nil {
		return err
	}
	_, err = services.NewImportService(conn).Replace(context.Background(), wb)
	return err
}

func closeDB(conn *gorm.DB) {
	sqlDB, err := conn.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logging.Warn().Err(err).Msg("closing database")
	}
}
