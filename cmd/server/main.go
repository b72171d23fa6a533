package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"wonder-stats/internal/config"
	"wonder-stats/internal/db"
	"wonder-stats/internal/server"

	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "wonder-stats",
		Usage: "real-time 7 Wonders score tracking server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address (overrides PORT)",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "dotenv file to load",
			},
			&cli.BoolFlag{
				Name:  "auto-migrate",
				Usage: "run schema auto-migration at startup",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	level := slog.LevelInfo
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: level}))
	slog.SetDefault(logger)

	if err := config.LoadDotEnv(cmd.String("env-file")); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}
	cfg := config.Load()
	if addr := cmd.String("addr"); addr != "" {
		cfg.Addr = addr
	}

	var store server.Store
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg)
		if err != nil {
			return err
		}
		if cmd.Bool("auto-migrate") {
			if err := db.Migrate(conn); err != nil {
				return err
			}
		}
		store = server.NewDBStore(conn, logger)
	} else {
		logger.Warn("DATABASE_URL is not set; falling back to in-memory store")
		store = server.NewMemStore()
	}

	srv := server.New(store, cfg, logger)
	logger.Info("wonder-stats server listening", "addr", cfg.Addr)
	return http.ListenAndServe(cfg.Addr, srv.Handler())
}
