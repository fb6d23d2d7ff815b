package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aryan0dhankhar/workshop/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/workshop/migrations"
	"github.com/aryan0dhankhar/workshop/pkg/config"
	"github.com/aryan0dhankhar/workshop/pkg/database"
)

const usage = `Usage: migrate <up|down|status|reset|version> [args]`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "up", "down", "status", "reset", "version", "up-to", "down-to", "redo":
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n%s\n", command, usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewLogger(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewConnectionPool(ctx, dbConfig(cfg), log)
	if err != nil {
		log.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := migrations.Run(ctx, pool.GetDB(), command, os.Args[2:]...); err != nil {
		log.Error("migration failed", slog.String("command", command), slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("migration finished", slog.String("command", command))
}

func dbConfig(cfg *config.Config) *database.Config {
	return &database.Config{
		URL:          cfg.Database.URL,
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Name,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: 2,
		MaxIdleConns: 1,
	}
}
