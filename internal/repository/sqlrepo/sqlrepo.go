// Package sqlrepo implements the repository interfaces on top of database/sql.
// The same queries serve SQLite and PostgreSQL; dialect differences are kept
// to placeholders, JSON path extraction and row locking (see internal/db).
package sqlrepo

import (
	"context"
	"database/sql/driver"
	"errors"
	"log/slog"
	"time"

	"github.com/garnizeh/pereval/internal/db"
	"github.com/garnizeh/pereval/pkg/repository"
)

// SQLRepo implements repository interfaces using the internal DB wrapper.
type SQLRepo struct {
	conn   *db.DB
	logger *slog.Logger
}

// Ensure SQLRepo implements the public interfaces.
var _ repository.PerevalRepo = (*SQLRepo)(nil)
var _ repository.ImageRepo = (*SQLRepo)(nil)
var _ repository.ReferenceRepo = (*SQLRepo)(nil)
var _ repository.Pinger = (*SQLRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLRepo{conn: conn, logger: logger}
}

func (r *SQLRepo) Ping(ctx context.Context) error {
	return r.conn.Ping(ctx)
}

// fail passes domain errors through and wraps everything else as a
// PersistenceError. WithTx has already rolled back by the time it runs.
func (r *SQLRepo) fail(op string, err error) error {
	var rv *repository.RuleViolation
	switch {
	case errors.As(err, &rv):
		r.logger.Info(op+" rejected", slog.String("field", rv.Field), slog.String("reason", rv.Reason))
		return err
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrValidation):
		return err
	}

	r.logger.Error(op+" failed", slog.Any("err", err))
	return &repository.PersistenceError{Op: op, Err: err}
}

// encodeJSON renders a JSON column value as text, which both the SQLite TEXT
// and PostgreSQL JSONB columns accept.
func encodeJSON(v driver.Valuer) (string, error) {
	val, err := v.Value()
	if err != nil {
		return "", repository.Invalid("%v", err)
	}
	s, _ := val.(string)
	return s, nil
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}
