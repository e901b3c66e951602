// Package main is the entry point for the event agency CRM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/yelinaung/event-crm/internal/cli"
	"gitlab.com/yelinaung/event-crm/internal/logger"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := cli.New(cli.BuildInfo{Version: version, Commit: commit, Date: date})
	if err := root.ExecuteContext(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("Command failed")
		stop()
		os.Exit(1)
	}
}
