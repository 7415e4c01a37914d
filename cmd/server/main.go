// Package main initializes and starts the development account backend,
// setting up configuration, logging, the database connection, the
// repository, the service, and the HTTP routes.
package main

import (
	"cmp"
	"context"
	"fmt"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/rainflow/accounts/internal/config"
	"github.com/rainflow/accounts/internal/db"
	"github.com/rainflow/accounts/internal/logger"
	"github.com/rainflow/accounts/internal/repository"
	"github.com/rainflow/accounts/internal/server/handler/http"
	"github.com/rainflow/accounts/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	ctx := context.Background()

	// Read configuration from the environment.
	cfg, err := config.LoadServer(ctx)
	if err != nil {
		panic(fmt.Sprintf("cannot load config: %v", err))
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	if err := log.Init(cfg.LogLevel); err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}
	defer func() { _ = log.Log.Sync() }()
	zapLogger := log.Log

	// Initialize PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(cfg.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Sweep expired session tokens in the background.
	db.StartSessionSweeper(ctx, postgresDB, cfg.SweepInterval, zapLogger)

	// Wire repository, service, handler, router.
	repo := repository.NewPostgresAccountRepository(postgresDB)
	accountService := service.NewAccountService(repo, cfg.SessionTTL)
	accountHandler := &http.AccountHandler{AccountService: accountService}
	router := http.NewRouter(accountHandler, zapLogger)

	server := &nethttp.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
