package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/garnizeh/pereval/internal/db"
	"github.com/garnizeh/pereval/internal/pereval"
	"github.com/garnizeh/pereval/pkg/models"
	"github.com/garnizeh/pereval/pkg/repository"
)

const selectPereval = `SELECT id, raw_data, images, status, date_added, date_updated FROM pereval_added`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPereval(row rowScanner) (*models.PassRecord, error) {
	var (
		rec     models.PassRecord
		added   int64
		updated sql.NullInt64
	)
	if err := row.Scan(&rec.ID, &rec.RawData, &rec.Images, &rec.Status, &added, &updated); err != nil {
		return nil, err
	}

	rec.DateAdded = models.FromMillis(added)
	if updated.Valid {
		t := models.FromMillis(updated.Int64)
		rec.DateUpdated = &t
	}
	if rec.Images == nil {
		rec.Images = models.Images{}
	}
	return &rec, nil
}

func (r *SQLRepo) CreatePereval(ctx context.Context, raw models.RawData, images models.Images) (int64, error) {
	if raw == nil {
		return 0, repository.Invalid("raw_data is required")
	}
	if images == nil {
		images = models.Images{}
	}

	rawJSON, err := encodeJSON(raw)
	if err != nil {
		return 0, err
	}
	imagesJSON, err := encodeJSON(images)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.conn.WithTx(ctx, func(ctx context.Context, tx *db.Tx) error {
		return tx.QueryRow(ctx,
			`INSERT INTO pereval_added (raw_data, images, status, date_added) VALUES (?, ?, ?, ?) RETURNING id`,
			rawJSON, imagesJSON, string(models.StatusNew), now(),
		).Scan(&id)
	})
	if err != nil {
		return 0, r.fail("create pereval", err)
	}

	r.logger.Info("pereval added", slog.Int64("id", id))
	return id, nil
}

func (r *SQLRepo) GetPereval(ctx context.Context, id int64) (*models.PassRecord, error) {
	rec, err := scanPereval(r.conn.QueryRow(ctx, selectPereval+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, r.fail("get pereval", err)
	}
	return rec, nil
}

func (r *SQLRepo) ListPerevals(ctx context.Context) ([]models.PassRecord, error) {
	return r.listPerevals(ctx, "list perevals", selectPereval+` ORDER BY date_added DESC, id DESC`)
}

// ListPerevalsByEmail matches raw_data.user.email exactly, falling back to the
// legacy top-level raw_data.email.
func (r *SQLRepo) ListPerevalsByEmail(ctx context.Context, email string) ([]models.PassRecord, error) {
	d := r.conn.Dialect()
	q := selectPereval +
		` WHERE COALESCE(` + d.JSONText("raw_data", models.UserKey, models.FieldEmail) + `, ` + d.JSONText("raw_data", models.FieldEmail) + `) = ?` +
		` ORDER BY date_added DESC, id DESC`
	return r.listPerevals(ctx, "list perevals by email", q, email)
}

func (r *SQLRepo) listPerevals(ctx context.Context, op, query string, args ...any) ([]models.PassRecord, error) {
	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, r.fail(op, err)
	}
	defer rows.Close()

	out := []models.PassRecord{}
	for rows.Next() {
		rec, err := scanPereval(rows)
		if err != nil {
			return nil, r.fail(op, err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail(op, err)
	}

	return out, nil
}

// UpdatePereval applies patch inside one transaction. The row is re-read (and
// locked on PostgreSQL) before the edit rules run; any rejection or failure
// rolls the transaction back, so either the whole patch lands or nothing does.
func (r *SQLRepo) UpdatePereval(ctx context.Context, id int64, patch models.PerevalPatch) error {
	err := r.conn.WithTx(ctx, func(ctx context.Context, tx *db.Tx) error {
		rec, err := scanPereval(tx.QueryRow(ctx, selectPereval+` WHERE id = ?`+tx.Dialect().ForUpdate(), id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return repository.ErrNotFound
			}
			return err
		}

		raw, images, err := pereval.Apply(rec, patch)
		if err != nil {
			return err
		}

		rawJSON, err := encodeJSON(raw)
		if err != nil {
			return err
		}
		imagesJSON, err := encodeJSON(images)
		if err != nil {
			return err
		}

		res, err := tx.Exec(ctx,
			`UPDATE pereval_added SET raw_data = ?, images = ?, date_updated = ? WHERE id = ? AND status = ?`,
			rawJSON, imagesJSON, now(), id, string(models.StatusNew),
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return &repository.RuleViolation{Field: "status", Reason: "editing is forbidden: record is no longer new"}
		}
		return nil
	})
	if err != nil {
		return r.fail("update pereval", err)
	}

	r.logger.Info("pereval updated", slog.Int64("id", id))
	return nil
}

func (r *SQLRepo) DeletePereval(ctx context.Context, id int64) (bool, error) {
	var removed bool
	err := r.conn.WithTx(ctx, func(ctx context.Context, tx *db.Tx) error {
		res, err := tx.Exec(ctx, `DELETE FROM pereval_added WHERE id = ?`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		removed = n > 0
		return nil
	})
	if err != nil {
		return false, r.fail("delete pereval", err)
	}

	if removed {
		r.logger.Info("pereval deleted", slog.Int64("id", id))
	}
	return removed, nil
}
