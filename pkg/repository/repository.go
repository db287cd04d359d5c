package repository

import (
	"context"

	"github.com/garnizeh/pereval/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

type PerevalRepo interface {
	CreatePereval(ctx context.Context, raw models.RawData, images models.Images) (int64, error)
	GetPereval(ctx context.Context, id int64) (*models.PassRecord, error)
	ListPerevals(ctx context.Context) ([]models.PassRecord, error)
	ListPerevalsByEmail(ctx context.Context, email string) ([]models.PassRecord, error)
	UpdatePereval(ctx context.Context, id int64, patch models.PerevalPatch) error
	DeletePereval(ctx context.Context, id int64) (bool, error)
}

type ImageRepo interface {
	AddImage(ctx context.Context, data []byte) (int64, error)
	GetImage(ctx context.Context, id int64) (*models.ImageBlob, error)
}

type ReferenceRepo interface {
	ListAreas(ctx context.Context) ([]models.Area, error)
	ListActivityTypes(ctx context.Context) ([]models.ActivityType, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
