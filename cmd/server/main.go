// Package main provides the XCH4 grid API HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"go.ngs.io/xch4-api/internal/adapter/store"
	"go.ngs.io/xch4-api/internal/config"
	"go.ngs.io/xch4-api/internal/exitcode"
	httpHandler "go.ngs.io/xch4-api/internal/http"
	"go.ngs.io/xch4-api/internal/usecase"
)

const version = "0.1.0"

func main() {
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}
	if *showVersion {
		fmt.Printf("xch4-api version %s\n", version)
		return
	}

	if err := config.LoadDotEnv(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(exitcode.ConfigError)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	loader, err := store.New(cfg.Backend)
	if err != nil {
		slog.Error("failed to create grid loader", "error", err)
		os.Exit(exitcode.ConfigError)
	}

	gridUC := usecase.NewGridUseCase(loader, cfg.DataDir)

	if cfg.LogLevel > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpHandler.SetupRouter(gridUC, cfg.CORSAllowedOrigins, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 15*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("server listening",
		"addr", srv.Addr,
		"data_dir", cfg.DataDir,
		"backend", cfg.Backend,
		"version", version,
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("failed to start server", "error", err)
		os.Exit(exitcode.ApplicationError)
	}
	slog.Info("shutdown complete")
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("XCH4 API Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  xch4-api [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES (also read from .env):")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  DATA_DIR                Directory of <product>.nc WFMD grid files (default: ./data)")
	fmt.Println("  NETCDF_BACKEND          netcdf-c or native (default: netcdf-c; builds without cgo need native)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println("  LOG_LEVEL               debug, info, warn or error (default: info)")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET /health                    Health check")
	fmt.Println("  GET /v1/products               List grid files")
	fmt.Println("  GET /v1/grid                   Subset shape and coordinates")
	fmt.Println("  GET /v1/timeseries             Area-weighted daily mean")
	fmt.Println("  GET /v1/point                  Interpolated XCH4 at a location")
	fmt.Println()
}
