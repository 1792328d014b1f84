package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/clockd/clockd/internal/common"
)

func (a *App) sync(ctx context.Context) {
	if !a.requireLogin() {
		return
	}

	err := a.syncService.Sync(ctx)
	switch {
	case err == nil:
		a.items = nil
		fmt.Println("Sync finished")
	case errors.Is(err, common.ErrSyncInProgress):
		fmt.Println("Sync already running")
	default:
		// single user-facing message; details stay in the logs
		fmt.Printf("Sync failed: %v\n", err)
	}
}
