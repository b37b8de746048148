package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/bestpath/internal/api"
	"github.com/mtlprog/bestpath/internal/config"
	"github.com/mtlprog/bestpath/internal/database"
	"github.com/mtlprog/bestpath/internal/domain"
	"github.com/mtlprog/bestpath/internal/export"
	"github.com/mtlprog/bestpath/internal/metrics"
	"github.com/mtlprog/bestpath/internal/monitor"
	"github.com/mtlprog/bestpath/internal/oracle"
	"github.com/mtlprog/bestpath/internal/pathstore"
	"github.com/mtlprog/bestpath/internal/provider"
	"github.com/mtlprog/bestpath/internal/worker"
)

func serve(ctx context.Context, cfg config.Config) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	if cfg.DatabaseURL == "" {
		return cli.Exit("DATABASE_URL is required", 1)
	}
	calc, ok := domain.NewCalculator(cfg.Calculator)
	if !ok {
		return cli.Exit(fmt.Sprintf("unknown CALCULATOR %q", cfg.Calculator), 1)
	}

	// Connect to database
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Run migrations
	migrations, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("creating migrations sub-fs: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrations); err != nil {
		return err
	}

	// Price providers
	cryptoCompare := provider.NewCryptoCompareClient(
		cfg.CryptoCompareURL, cfg.CryptoCompareAPIKey, cfg.CryptoCompareRPS,
		cfg.CryptoCompareRetryMax, cfg.CryptoCompareRetryBaseDelay)
	hub := provider.NewHub(map[domain.Provider]provider.PriceFetcher{
		domain.CryptoCompare: cryptoCompare,
	})

	// Services
	recorder := metrics.NewRecorder()
	monitorSvc := monitor.NewService(monitor.NewPgRepository(pool))
	paths := pathstore.NewPgRepository(pool)
	oracleSvc := oracle.NewService(monitorSvc, hub, calc, paths, recorder, cfg.PriceChangeTolerance)

	hooks, err := exportHooks(ctx, cfg, paths)
	if err != nil {
		return err
	}

	// Start worker
	bestPathWorker := worker.NewBestPathWorker(oracleSvc, cfg.RecomputeInterval, recorder, hooks...)
	go bestPathWorker.Run(ctx)

	if cfg.AdminAPIKey == "" {
		slog.Warn("ADMIN_API_KEY not set, admin endpoints are unprotected")
	}

	// Start HTTP server
	srv := api.NewServer(cfg.HTTPPort, paths, monitorSvc, bestPathWorker, recorder.Handler(), cfg.AdminAPIKey)

	go func() {
		log.Printf("HTTP server listening on :%s (calculator %s)", cfg.HTTPPort, cfg.Calculator)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
	return nil
}

// exportHooks builds the table export hook from the configured writers, if any.
func exportHooks(ctx context.Context, cfg config.Config, paths export.PathLister) ([]worker.AfterUpdateHook, error) {
	var writers []export.SheetWriter

	if cfg.XLSXExportPath != "" {
		writers = append(writers, export.NewXLSXWriter(cfg.XLSXExportPath))
		slog.Info("export: xlsx enabled", "path", cfg.XLSXExportPath)
	}

	if cfg.GoogleSpreadsheetID != "" {
		if cfg.GoogleCredentialsJSON == "" {
			slog.Warn("GOOGLE_SPREADSHEET_ID set without GOOGLE_CREDENTIALS_JSON, sheets export disabled")
		} else {
			sheets, err := export.NewSheetsWriter(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleCredentialsJSON)
			if err != nil {
				return nil, fmt.Errorf("creating sheets writer: %w", err)
			}
			writers = append(writers, sheets)
			slog.Info("export: google sheets enabled", "spreadsheet", cfg.GoogleSpreadsheetID)
		}
	}

	if len(writers) == 0 {
		return nil, nil
	}
	return []worker.AfterUpdateHook{export.NewService(paths, writers...)}, nil
}
