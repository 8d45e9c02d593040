// cmd/ingest/main.go
package main

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/plannink/forecast-api/internal/config"
	"github.com/plannink/forecast-api/internal/ingest"
	"github.com/plannink/forecast-api/internal/repository"
	"github.com/plannink/forecast-api/internal/storage"
	"github.com/plannink/forecast-api/pkg/logger"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "ingest",
		Usage: "Load product sheets into the forecast database",
		Commands: []*cli.Command{
			{
				Name:      "products",
				Usage:     "Ingest an XLSX or CSV product sheet",
				ArgsUsage: "<file> [<file> ...]",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.BoolFlag{
						Name:  "archive",
						Usage: "Archive the original file to object storage",
					},
				},
				Action: ingestProducts,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("ingest failed")
	}
}

func ingestProducts(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}

	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	var archive storage.ObjectStorage
	if c.Bool("archive") {
		cfg := config.Load()
		archive, err = storage.NewArchiveStore(cfg.Archive)
		if err != nil {
			return fmt.Errorf("failed to initialize archive: %w", err)
		}
	}

	svc := ingest.NewService(repository.NewIngestRepository(db), archive)

	for _, path := range c.Args().Slice() {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			logger.Log.Warn().Str("file", path).Msg("file not found, skipping")
			continue
		}

		result, err := svc.IngestFile(c.Context, path)
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", path, err)
		}

		logger.Log.Info().
			Str("file", result.FileName).
			Int("products", result.Products).
			Int("warnings", result.Warnings).
			Msg("ingested")
	}

	return nil
}
