package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/mindfulplus/mindful/internal/buildinfo"
	"github.com/mindfulplus/mindful/internal/client/cli"
	"github.com/mindfulplus/mindful/internal/config"
	"github.com/mindfulplus/mindful/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.NewJSONLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
