package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"slices"

	"github.com/urfave/cli/v3"

	"blog/internal/config"
	"blog/internal/db"
	"blog/internal/server"
)

const VERSION = "0.1.0"

var validLogLevels = []string{"debug", "info", "warn", "error"}

var logLevelFlag = &cli.StringFlag{
	Name:    "log-level",
	Aliases: []string{"l"},
	Usage:   "The level of the logs",
	Value:   "info",
	Validator: func(value string) error {
		if !slices.Contains(validLogLevels, value) {
			return fmt.Errorf("invalid log level: %s, allowed values are: %s", value, validLogLevels)
		}
		return nil
	},
	Sources: cli.EnvVars("LOG_LEVEL"),
}

var cmd = &cli.Command{
	Name:    "blog",
	Usage:   "Serve the blog over HTTP",
	Version: VERSION,
	Flags:   []cli.Flag{logLevelFlag},
	Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
		if err := initLogger(c.String("log-level")); err != nil {
			return ctx, err
		}
		return ctx, nil
	},
	Action: run,
}

func main() {
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(_ context.Context, _ *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	srv, err := server.New(database, slog.Default(), cfg)
	if err != nil {
		return err
	}

	slog.Info("listening", "addr", cfg.Addr)
	return http.ListenAndServe(cfg.Addr, srv)
}
