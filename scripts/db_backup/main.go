package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/garnizeh/pereval/internal/config"
	"github.com/garnizeh/pereval/internal/db"
)

// Backs up the SQLite store with VACUUM INTO, which yields a consistent copy
// even while the server is running. PostgreSQL deployments use pg_dump.
func main() {
	configPath := flag.String("config", "", "Path to config YAML file")
	out := flag.String("out", "", "Backup file (default <db path>.bak)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if db.Dialect(cfg.Database.Driver) != db.SQLite {
		fmt.Fprintf(os.Stderr, "Backup error: driver %q is not supported, use pg_dump for PostgreSQL\n", cfg.Database.Driver)
		os.Exit(1)
	}

	dst := *out
	if dst == "" {
		dst = cfg.Database.Path + ".bak"
	}
	if _, err := os.Stat(dst); err == nil {
		fmt.Fprintf(os.Stderr, "Backup error: %s already exists\n", dst)
		os.Exit(1)
	}

	ctx := context.Background()
	database, err := db.New(ctx, db.SQLite, cfg.Database.DSN(), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if _, err := database.Exec(ctx, `VACUUM INTO ?`, dst); err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database backup completed: %s\n", dst)
}
