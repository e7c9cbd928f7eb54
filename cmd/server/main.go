package main

import (
	"context"
	"log"
	"os"

	"github.com/punit-mobi/RBAC-project/internal/logging"
	"github.com/punit-mobi/RBAC-project/internal/server"
	"github.com/punit-mobi/RBAC-project/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewJSONLogger(os.Stdout, cfg.LogLevel)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

}
