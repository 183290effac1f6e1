package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"storefront/config"
	logs "storefront/internal/infra/log"
	"storefront/internal/infra/persistence/postgres"

	"github.com/pkg/errors"
	pgLib "github.com/slighter12/go-lib/database/postgres"
)

func main() {
	direction := flag.String("direction", string(postgres.MigrateUp), "Migration direction (up or down)")
	flag.Parse()

	if err := run(postgres.MigrationDirection(*direction)); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %+v\n", err)
		os.Exit(1)
	}
}

func run(direction postgres.MigrationDirection) error {
	if direction != postgres.MigrateUp && direction != postgres.MigrateDown {
		return errors.Errorf("unknown direction %q", direction)
	}

	cfg, err := config.New()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	logger, err := logs.New(logs.Params{Config: cfg})
	if err != nil {
		return errors.Wrap(err, "failed to create logger")
	}

	db, err := pgLib.New(cfg.Postgres)
	if err != nil {
		return errors.Wrap(err, "failed to connect to PostgreSQL")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB")
	}
	defer sqlDB.Close()

	logger.Info("Running migrations", slog.String("direction", string(direction)))

	return postgres.Migrate(sqlDB, direction, logger)
}
