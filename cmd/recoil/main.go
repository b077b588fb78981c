// Package main is the entry point for the recoil CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/recoilapp/recoil/cmd/recoil/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd.SetVersionInfo(version, commit, date)
	if err := cmd.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
