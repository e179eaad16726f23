package main

import (
	"context"
	"log"
	"os"

	"filedeck/internal/buildinfo"
	"filedeck/internal/cli"
	"filedeck/internal/config"
	"filedeck/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewJSON(os.Stderr)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
