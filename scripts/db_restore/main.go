package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/garnizeh/pereval/internal/config"
	"github.com/garnizeh/pereval/internal/db"
)

// Restores a SQLite backup over the configured database file. The server
// must be stopped first. The backup is integrity-checked before copying.
func main() {
	configPath := flag.String("config", "", "Path to config YAML file")
	in := flag.String("in", "", "Backup file (default <db path>.bak)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if db.Dialect(cfg.Database.Driver) != db.SQLite {
		fmt.Fprintf(os.Stderr, "Restore error: driver %q is not supported, use pg_restore for PostgreSQL\n", cfg.Database.Driver)
		os.Exit(1)
	}

	src := *in
	if src == "" {
		src = cfg.Database.Path + ".bak"
	}
	dst := cfg.Database.Path

	if err := checkBackup(src); err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database restore completed: %s -> %s\n", src, dst)
}

func checkBackup(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	ctx := context.Background()
	backup, err := db.New(ctx, db.SQLite, path, nil)
	if err != nil {
		return err
	}
	defer backup.Close()

	var result string
	if err := backup.QueryRow(ctx, `PRAGMA integrity_check`).Scan(&result); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}
