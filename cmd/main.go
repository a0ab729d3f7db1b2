package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"jsonvault/internal/configuration"
	"jsonvault/internal/logging"
)

func main() {
	baseDir := flag.String("config-dir", "configs", "directory holding application.yml")
	profileDir := flag.String("profile-dir", "configs", "directory holding application-<profile>.yml")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	cfg, err := configuration.Load(*baseDir, *profileDir)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Init(cfg.App.LogLevel)
	slog.Info("starting jsonvault", "node_id", cfg.Raft.NodeID, "profile", cfg.App.Profile)

	app, err := newApp(cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}

	slog.Info("jsonvault ready", "address", cfg.Server.ListenAddr())
	<-ctx.Done()

	slog.Info("shutting down")
	app.Stop()
}
