// Package main provides the entry point for the nextdoc documentation browser CLI.
package main

import (
	"os"

	"github.com/GabrielNunesIT/go-libs/logger"

	"github.com/NextDoc4j/nextdoc4j-ui/internal/cli"
	"github.com/NextDoc4j/nextdoc4j-ui/internal/config"
)

func main() {
	log := logger.NewConsoleLogger(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		log.Errorf("Error loading config: %v", err)
		os.Exit(1)
	}

	app := cli.New(log, cfg)
	if err := app.Execute(); err != nil {
		log.Errorf("Error: %v", err)
		os.Exit(1)
	}
}
