// Package main contains the entrypoint for the leadchat server.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"leadchat/internal/ai"
	"leadchat/internal/chat"
	"leadchat/internal/config"
	"leadchat/internal/database"
	"leadchat/internal/httpserver"
	"leadchat/internal/lead"
	"leadchat/internal/logger"
	"leadchat/internal/scheduler"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all application components (config, logger, db, ai client,
// http server, scheduler), handles graceful shutdown, and returns an exit
// code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)

	store := database.NewStore(db, log)
	gateway := database.NewGateway(store, database.NewMemoryStore(log), log)

	client, err := ai.New(ctx, cfg.AI, log)
	if err != nil {
		log.Error("Failed to initialize completion client", "backend", cfg.AI.Backend, "error", err)
		return 1
	}

	chatSvc := chat.NewService(client, gateway, cfg.AI.SystemPrompt, log)
	analyzer := lead.NewAnalyzer(client, gateway, log)

	srv := httpserver.New(cfg.Server, chatSvc, analyzer, gateway, log)

	sched, err := scheduler.New(cfg.Scheduler, store, log)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gCtx) })
	g.Go(func() error { return sched.Run(gCtx) })

	log.Info("Server starting", "addr", cfg.Server.Addr)
	runErr := g.Wait()
	log.Info("Run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Server stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Server stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
