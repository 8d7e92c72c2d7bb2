package main

import (
	"errors"
	"flag"
	stdlog "log"

	"github.com/golang-migrate/migrate"
	_ "github.com/golang-migrate/migrate/database/postgres"
	_ "github.com/golang-migrate/migrate/source/file"
	"go.uber.org/zap"

	"majaz-portal/internal/config"
	"majaz-portal/internal/logger"
)

func main() {
	var configPath, migrationPath string
	var down bool

	flag.StringVar(&configPath, "config_path", "", "Path to the config file")
	flag.StringVar(&migrationPath, "migration_path", "migrations", "Path to the migration directory")
	flag.BoolVar(&down, "down", false, "Roll back the latest migration instead of applying all")
	flag.Parse()

	cfg, err := config.New(configPath)
	if err != nil {
		stdlog.Fatal(err)
	}

	log, err := logger.New(&cfg.Logger)
	if err != nil {
		stdlog.Fatal(err)
	}

	migration, err := migrate.New("file://"+migrationPath, cfg.Postgres.MigrateURL())
	if err != nil {
		log.Fatal("failed to create migration", zap.Error(err))
	}
	defer migration.Close()

	if down {
		err = migration.Steps(-1)
	} else {
		err = migration.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal("failed to run migration", zap.Error(err), zap.Bool("down", down))
	}

	version, dirty, _ := migration.Version()
	log.Info("successfully migrated", zap.Uint("version", version), zap.Bool("dirty", dirty))
}
