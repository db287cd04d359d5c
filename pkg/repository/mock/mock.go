package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/garnizeh/pereval/internal/pereval"
	"github.com/garnizeh/pereval/pkg/models"
	"github.com/garnizeh/pereval/pkg/repository"
)

// Store is an in-memory implementation of every repository interface, used
// by handler tests. Setting Err makes each call fail with it.
type Store struct {
	mu       sync.Mutex
	nextID   int64
	nextImg  int64
	perevals map[int64]models.PassRecord
	images   map[int64]models.ImageBlob

	Areas      []models.Area
	Activities []models.ActivityType
	Err        error
}

var (
	_ repository.PerevalRepo   = (*Store)(nil)
	_ repository.ImageRepo     = (*Store)(nil)
	_ repository.ReferenceRepo = (*Store)(nil)
	_ repository.Pinger        = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		perevals: make(map[int64]models.PassRecord),
		images:   make(map[int64]models.ImageBlob),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Err
}

func (s *Store) CreatePereval(ctx context.Context, raw models.RawData, images models.Images) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	if raw == nil {
		return 0, repository.Invalid("raw_data is required")
	}
	if images == nil {
		images = models.Images{}
	}

	s.nextID++
	s.perevals[s.nextID] = models.PassRecord{
		ID:        s.nextID,
		RawData:   raw,
		Images:    images,
		Status:    models.StatusNew,
		DateAdded: time.Now().UTC(),
	}
	return s.nextID, nil
}

func (s *Store) GetPereval(ctx context.Context, id int64) (*models.PassRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	rec, ok := s.perevals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

func (s *Store) ListPerevals(ctx context.Context) ([]models.PassRecord, error) {
	return s.list(func(models.PassRecord) bool { return true })
}

func (s *Store) ListPerevalsByEmail(ctx context.Context, email string) ([]models.PassRecord, error) {
	return s.list(func(rec models.PassRecord) bool { return rec.RawData.Email() == email })
}

func (s *Store) list(keep func(models.PassRecord) bool) ([]models.PassRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	out := []models.PassRecord{}
	for _, rec := range s.perevals {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) UpdatePereval(ctx context.Context, id int64, patch models.PerevalPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	rec, ok := s.perevals[id]
	if !ok {
		return repository.ErrNotFound
	}

	raw, images, err := pereval.Apply(&rec, patch)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	rec.RawData, rec.Images, rec.DateUpdated = raw, images, &now
	s.perevals[id] = rec
	return nil
}

func (s *Store) DeletePereval(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	_, ok := s.perevals[id]
	delete(s.perevals, id)
	return ok, nil
}

// SetStatus plays the moderator role for tests.
func (s *Store) SetStatus(id int64, status models.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.perevals[id]; ok {
		rec.Status = status
		s.perevals[id] = rec
	}
}

func (s *Store) AddImage(ctx context.Context, data []byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	s.nextImg++
	s.images[s.nextImg] = models.ImageBlob{ID: s.nextImg, Data: append([]byte(nil), data...), DateAdded: time.Now().UTC()}
	return s.nextImg, nil
}

func (s *Store) GetImage(ctx context.Context, id int64) (*models.ImageBlob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	img, ok := s.images[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &img, nil
}

func (s *Store) ListAreas(ctx context.Context) ([]models.Area, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]models.Area{}, s.Areas...), nil
}

func (s *Store) ListActivityTypes(ctx context.Context) ([]models.ActivityType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]models.ActivityType{}, s.Activities...), nil
}
