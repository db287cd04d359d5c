package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/garnizeh/pereval/internal/db"
	"github.com/garnizeh/pereval/pkg/models"
	"github.com/garnizeh/pereval/pkg/repository"
)

func (r *SQLRepo) AddImage(ctx context.Context, data []byte) (int64, error) {
	if data == nil {
		data = []byte{}
	}

	var id int64
	err := r.conn.WithTx(ctx, func(ctx context.Context, tx *db.Tx) error {
		return tx.QueryRow(ctx, `INSERT INTO pereval_images (img, date_added) VALUES (?, ?) RETURNING id`, data, now()).Scan(&id)
	})
	if err != nil {
		return 0, r.fail("add image", err)
	}

	r.logger.Info("image added", slog.Int64("id", id), slog.Int("bytes", len(data)))
	return id, nil
}

func (r *SQLRepo) GetImage(ctx context.Context, id int64) (*models.ImageBlob, error) {
	var (
		img   models.ImageBlob
		added int64
	)
	err := r.conn.QueryRow(ctx, `SELECT id, img, date_added FROM pereval_images WHERE id = ?`, id).Scan(&img.ID, &img.Data, &added)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, r.fail("get image", err)
	}

	img.DateAdded = models.FromMillis(added)
	return &img, nil
}
