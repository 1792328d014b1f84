// Package server wires up and runs the sync server: configuration, logging,
// the PostgreSQL store, and the HTTP endpoint with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/clockd/clockd/internal/logging"
	"github.com/clockd/clockd/internal/server/config"
	"github.com/clockd/clockd/internal/server/httpapi"
	"github.com/clockd/clockd/internal/server/repositories/items"
	"github.com/clockd/clockd/internal/server/repositories/records"
	"github.com/clockd/clockd/internal/server/repositories/refreshtokens"
	"github.com/clockd/clockd/internal/server/repositories/users"
	"github.com/clockd/clockd/internal/server/services"
	"github.com/clockd/clockd/internal/server/shared/db"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout)

	conn, err := db.InitDatabase(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := db.RunMigrations(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	userService := services.NewUserService(
		users.NewPostgresRepository(conn),
		refreshtokens.NewPostgresRepository(conn),
		cfg,
	)
	syncService := services.NewSyncService(
		items.NewPostgresRepository(conn),
		records.NewPostgresRepository(conn),
	)

	return &App{
		config: cfg,
		logger: logger,
		db:     conn,
		server: httpapi.NewServer(cfg, userService, syncService, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")

	app.initSignalHandler(cancelFunc)

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server error", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
