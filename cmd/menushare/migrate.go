package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Skotchmaster/menushare/internal/config"
	"github.com/Skotchmaster/menushare/internal/db"
	"github.com/Skotchmaster/menushare/internal/logging"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create or update the database schema and exit",
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			if err := config.Required("DATABASE_URL", cfg.DatabaseURL); err != nil {
				return err
			}
			logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

			ctx, cancel := context.WithTimeout(c.Context, time.Minute)
			defer cancel()

			gdb, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("db open: %w", err)
			}
			defer db.Close(gdb)

			if err := db.Migrate(ctx, gdb); err != nil {
				return err
			}
			logger.Info("migration complete")
			return nil
		},
	}
}
