package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	dbfs "github.com/garnizeh/pereval/db"
	"github.com/garnizeh/pereval/internal/config"
	"github.com/garnizeh/pereval/internal/db"
)

func main() {
	configPath := flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, db.Dialect(cfg.Database.Driver), cfg.Database.DSN(), config.SetupLogger(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	// schema and reference data
	if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
		fmt.Fprintf(os.Stderr, "Migration runner error: %v\n", err)
		os.Exit(1)
	}

	version, err := db.SchemaVersion(ctx, database, dbfs.Migrations)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Schema version error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database initialized successfully (%s, schema version %d).\n", cfg.Database.Driver, version)
}
