package main

import (
	"context"
	"embed"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/bestpath/internal/config"
	"github.com/mtlprog/bestpath/internal/database"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "bestpath",
		Usage: "best conversion paths between currencies from monitored price quotes",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run migrations, the recomputation worker and the HTTP API",
				Action: func(c *cli.Context) error { return serve(c.Context, config.Load()) },
			},
			{
				Name:   "migrate",
				Usage:  "apply pending database migrations and exit",
				Action: func(c *cli.Context) error { return migrate(c.Context, config.Load()) },
			},
			{
				Name:  "calc",
				Usage: "compute the best-path table for a JSON file of observations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "path to a JSON array of {source, target, provider, price}, or - for stdin",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "calculator",
						Aliases: []string{"c"},
						Usage:   "floyd-warshall or noop",
						Value:   "floyd-warshall",
					},
				},
				Action: func(c *cli.Context) error {
					return calcFile(c.String("input"), c.String("calculator"), c.App.Writer)
				},
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func migrate(ctx context.Context, cfg config.Config) error {
	if cfg.DatabaseURL == "" {
		return cli.Exit("DATABASE_URL is required", 1)
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	migrations, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	if err := database.RunMigrations(ctx, pool, migrations); err != nil {
		return err
	}
	log.Println("Migrations applied")
	return nil
}
