package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/phrazzld/taskpilot-api/internal/config"
	"github.com/phrazzld/taskpilot-api/internal/platform/logger"
	"github.com/phrazzld/taskpilot-api/internal/platform/sqlstore"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the database schema",
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: withDatabase(func(ctx context.Context, cmd *cli.Command, db *sql.DB, d sqlstore.Dialect) error {
					if err := sqlstore.Migrate(ctx, db, d); err != nil {
						return err
					}
					fmt.Fprintln(output(cmd), "migrations applied")
					return nil
				}),
			},
			{
				Name:  "down",
				Usage: "Roll back the most recent migration",
				Action: withDatabase(func(ctx context.Context, cmd *cli.Command, db *sql.DB, d sqlstore.Dialect) error {
					if err := sqlstore.Rollback(ctx, db, d); err != nil {
						return err
					}
					fmt.Fprintln(output(cmd), "rolled back one migration")
					return nil
				}),
			},
			{
				Name:  "status",
				Usage: "List migrations and whether they are applied",
				Action: withDatabase(func(ctx context.Context, cmd *cli.Command, db *sql.DB, d sqlstore.Dialect) error {
					statuses, err := sqlstore.Status(ctx, db, d)
					if err != nil {
						return err
					}
					w := output(cmd)
					for _, s := range statuses {
						state := "pending"
						if s.Applied {
							state = "applied"
						}
						fmt.Fprintf(w, "%-8s %d %s\n", state, s.Version, s.Path)
					}
					return nil
				}),
			},
		},
	}
}

type databaseAction func(ctx context.Context, cmd *cli.Command, db *sql.DB, dialect sqlstore.Dialect) error

// withDatabase loads configuration, opens the database for the duration of
// fn and closes it afterwards.
func withDatabase(fn databaseAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := config.LoadFrom(cmd.String("config"))
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		log, err := logger.Setup(cfg.Server)
		if err != nil {
			return fmt.Errorf("failed to set up logger: %w", err)
		}
		ctx = logger.WithLogger(ctx, log)

		db, dialect, err := openDatabase(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		return fn(ctx, cmd, db, dialect)
	}
}

func output(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}
