package sqlrepo

import (
	"context"

	"github.com/garnizeh/pereval/pkg/models"
)

func (r *SQLRepo) ListAreas(ctx context.Context) ([]models.Area, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, id_parent, title FROM pereval_areas ORDER BY id`)
	if err != nil {
		return nil, r.fail("list areas", err)
	}
	defer rows.Close()

	out := []models.Area{}
	for rows.Next() {
		var a models.Area
		if err := rows.Scan(&a.ID, &a.ParentID, &a.Title); err != nil {
			return nil, r.fail("list areas", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail("list areas", err)
	}
	return out, nil
}

func (r *SQLRepo) ListActivityTypes(ctx context.Context) ([]models.ActivityType, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, title FROM spr_activities_types ORDER BY id`)
	if err != nil {
		return nil, r.fail("list activity types", err)
	}
	defer rows.Close()

	out := []models.ActivityType{}
	for rows.Next() {
		var a models.ActivityType
		if err := rows.Scan(&a.ID, &a.Title); err != nil {
			return nil, r.fail("list activity types", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail("list activity types", err)
	}
	return out, nil
}
