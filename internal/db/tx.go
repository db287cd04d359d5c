package db

import (
	"context"
	"database/sql"
)

// Tx is the transactional handle passed to WithTx callbacks. Queries use ?
// placeholders, rebound for the connection's dialect.
type Tx struct {
	tx      *sql.Tx
	dialect Dialect
}

func (t *Tx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, t.dialect.Rebind(query), args...)
}

func (t *Tx) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, t.dialect.Rebind(query), args...)
}

func (t *Tx) Dialect() Dialect {
	return t.dialect
}

// WithTx begins a transaction, runs fn, and commits on success. It rolls back
// when fn returns an error or panics; panics are rethrown. The connection goes
// back to the pool on every path.
func (db *DB) WithTx(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) (err error) {
	sqlTx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := sqlTx.Rollback(); rbErr != nil {
				db.logger.Error("rollback failed", "err", rbErr)
			}
			return
		}
		err = sqlTx.Commit()
	}()

	err = fn(ctx, &Tx{tx: sqlTx, dialect: db.dialect})
	return err
}
