package main

import (
	"os"

	"coin-design-enrich/cmd"

	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err == nil {
		zap.ReplaceGlobals(logger)
		defer func() { _ = logger.Sync() }()
	}
	if err := cmd.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
