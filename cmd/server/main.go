package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/fe/internal/buildinfo"
	"github.com/dmitrijs2005/fe/internal/logging"
	"github.com/dmitrijs2005/fe/internal/server"
	"github.com/dmitrijs2005/fe/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewJSONLogger(os.Stdout, cfg.LogLevel)

	buildinfo.Print(os.Stdout, "fe-server")

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "init failed", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		os.Exit(1)
	}

}
