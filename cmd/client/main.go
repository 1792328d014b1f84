package main

import (
	"context"
	"log"
	"os"

	"github.com/clockd/clockd/internal/client/cli"
	"github.com/clockd/clockd/internal/client/config"
	"github.com/clockd/clockd/internal/logging"
)

func main() {

	ctx := context.Background()

	cfg := config.LoadConfig()
	logger := logging.NewJSON(os.Stderr)

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
