package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/rycusapp/rycus-cli/internal/client/cli"
	"github.com/rycusapp/rycus-cli/internal/client/config"
	"github.com/rycusapp/rycus-cli/internal/logging"
)

func main() {
	// A missing .env file is fine; environment variables still apply.
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewDefault()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
