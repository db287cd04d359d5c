package mock_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/garnizeh/pereval/pkg/models"
	"github.com/garnizeh/pereval/pkg/repository"
	"github.com/garnizeh/pereval/pkg/repository/mock"
)

func rawData(t *testing.T, s string) models.RawData {
	t.Helper()
	var d models.RawData
	if err := json.Unmarshal([]byte(s), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return d
}

func TestStore_ListPerevalsByEmail(t *testing.T) {
	s := mock.NewStore()
	ctx := context.Background()

	want := map[int64]bool{}
	for _, doc := range []string{
		`{"user":{"email":"x@y.com"}}`,
		`{"email":"x@y.com"}`,
		`{"user":{"email":null},"email":"x@y.com"}`,
	} {
		id, err := s.CreatePereval(ctx, rawData(t, doc), nil)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		want[id] = true
	}
	if _, err := s.CreatePereval(ctx, rawData(t, `{"user":{"email":"X@Y.com"}}`), nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.ListPerevalsByEmail(ctx, "x@y.com")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for _, rec := range got {
		if !want[rec.ID] {
			t.Fatalf("unexpected record %d", rec.ID)
		}
	}
}

func TestStore_UpdateRules(t *testing.T) {
	s := mock.NewStore()
	ctx := context.Background()

	id, err := s.CreatePereval(ctx, rawData(t, `{"title":"A","user":{"email":"x@y.com"}}`), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = s.UpdatePereval(ctx, id, models.PerevalPatch{RawData: rawData(t, `{"user":{"email":"z@y.com"}}`)})
	var rv *repository.RuleViolation
	if !errors.As(err, &rv) {
		t.Fatalf("expected rule violation, got %v", err)
	}

	s.SetStatus(id, models.StatusRejected)
	if err := s.UpdatePereval(ctx, id, models.PerevalPatch{RawData: rawData(t, `{"title":"B"}`)}); !errors.As(err, &rv) {
		t.Fatalf("expected rule violation for non-new record, got %v", err)
	}

	if err := s.UpdatePereval(ctx, id+1, models.PerevalPatch{}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
