package db

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"

	"github.com/pressly/goose/v3"
)

// Migrate brings the schema up to date using the SQL files embedded under
// migrations/<dialect>/ in migrationFS. Already applied files are skipped, so
// it is safe to call on every start. The same files seed the area and
// activity type reference tables.
func Migrate(ctx context.Context, d *DB, migrationFS fs.FS) error {
	dir := path.Join("migrations", string(d.dialect))
	sub, err := fs.Sub(migrationFS, dir)
	if err != nil {
		return fmt.Errorf("open migrations dir %s: %w", dir, err)
	}

	gooseDialect := goose.DialectSQLite3
	if d.dialect == Postgres {
		gooseDialect = goose.DialectPostgres
	}

	provider, err := goose.NewProvider(gooseDialect, d.conn, sub)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	for _, r := range results {
		d.logger.Info("migration applied",
			slog.Int64("version", r.Source.Version),
			slog.String("file", r.Source.Path),
			slog.Duration("duration", r.Duration),
		)
	}
	return nil
}

// SchemaVersion returns the highest applied migration version.
func SchemaVersion(ctx context.Context, d *DB, migrationFS fs.FS) (int64, error) {
	sub, err := fs.Sub(migrationFS, path.Join("migrations", string(d.dialect)))
	if err != nil {
		return 0, err
	}

	gooseDialect := goose.DialectSQLite3
	if d.dialect == Postgres {
		gooseDialect = goose.DialectPostgres
	}

	provider, err := goose.NewProvider(gooseDialect, d.conn, sub)
	if err != nil {
		return 0, err
	}
	return provider.GetDBVersion(ctx)
}
