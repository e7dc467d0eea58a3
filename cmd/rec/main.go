package main

import (
	"fmt"
	"os"

	"github.com/doomdagadiggiedahdah/audio-recorder/config"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/app"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/cli"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/output"
)

func main() {
	if err := run(); err != nil {
		formatter := output.NewFormatter(os.Stderr)
		formatter.Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	application, err := app.New(cfg, os.Stdin, os.Stdout)
	if err != nil {
		return fmt.Errorf("initializing app: %w", err)
	}
	defer application.Logger.Sync()

	deps := &cli.Dependencies{
		App:    application,
		Config: cfg,
	}

	return cli.NewRootCmd(deps).Execute()
}
