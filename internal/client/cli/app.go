// Package cli is the interactive REPL driving the sync engine: habit CRUD,
// check-ins and on-demand sync against the server.
package cli

import (
	"bufio"
	"context"
	"log"
	"os"
	"time"

	"github.com/clockd/clockd/internal/client/client"
	"github.com/clockd/clockd/internal/client/config"
	"github.com/clockd/clockd/internal/client/models"
	"github.com/clockd/clockd/internal/client/repo"
	"github.com/clockd/clockd/internal/client/repositories/settings"
	"github.com/clockd/clockd/internal/client/services"
	"github.com/clockd/clockd/internal/logging"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

type App struct {
	config      *config.Config
	authService *services.AuthService
	syncService *services.SyncService
	local       *repo.Local
	settings    settings.Repository

	userID   string
	userName string
	Mode     Mode
	reader   *bufio.Reader

	// items as printed by the last `list`, so commands can take an index
	items []models.Item
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {

	ctx := context.Background()

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient := client.NewHTTPClient(c.ServerEndpointURL)

	local := repo.New(db)
	settingsRepo := settings.NewSQLiteRepository(db)

	as := services.NewAuthService(apiClient, local)
	ss := services.NewSyncService(apiClient, local, settingsRepo, logger)

	return &App{
		config:      c,
		authService: as,
		syncService: ss,
		local:       local,
		settings:    settingsRepo,
		reader:      bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) Run(ctx context.Context) {
	defer a.authService.Close(ctx)
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.userID != ""
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.authService.Ping(pingCtx)
			cancel()

			if err != nil {
				if a.Mode == ModeOnline {
					a.setMode(ModeOffline)
				}
			} else {
				if a.Mode != ModeOnline {
					a.setMode(ModeOnline)
				}
			}

		case <-ctx.Done():
			return
		}
	}
}
