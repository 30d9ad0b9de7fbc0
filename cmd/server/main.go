package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/libriahq/libria/internal/logging"
	"github.com/libriahq/libria/internal/server"
	"github.com/libriahq/libria/internal/server/config"
)

func main() {
	flags := pflag.NewFlagSet("libria-server", pflag.ExitOnError)
	configFile := flags.StringP("config", "c", "", "path to config file")
	flags.String("addr", ":8080", "listen address")
	flags.String("db-dsn", "", "database connection string")
	flags.String("jwt-secret", "", "JWT verification secret")
	flags.String("s3-bucket", "", "S3 bucket name")
	flags.String("s3-region", "", "S3 region")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configFile, flags)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.NewLogger(cfg.Log.Level, cfg.Log.Production)

	ctx := context.Background()
	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err.Error())
		return
	}

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "server stopped", "error", err.Error())
	}
}
