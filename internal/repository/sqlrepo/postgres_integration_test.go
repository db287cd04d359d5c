package sqlrepo_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	dbfs "github.com/garnizeh/pereval/db"
	dbpkg "github.com/garnizeh/pereval/internal/db"
	"github.com/garnizeh/pereval/internal/repository/sqlrepo"
	"github.com/garnizeh/pereval/pkg/models"
	"github.com/garnizeh/pereval/pkg/repository"
)

// setupPostgresRepo starts PostgreSQL in a container and applies migrations.
// Skipped unless TEST_INTEGRATION is set.
func setupPostgresRepo(t *testing.T) *sqlrepo.SQLRepo {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("skipping integration test: TEST_INTEGRATION not set")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("pereval_test"),
		postgres.WithUsername("pereval"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	d, err := dbpkg.New(ctx, dbpkg.Postgres, dsn, logger, dbpkg.Options{MaxOpenConns: 5})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	require.NoError(t, dbpkg.Migrate(ctx, d, dbfs.Migrations))
	return sqlrepo.New(d, logger)
}

func TestPostgres_Lifecycle(t *testing.T) {
	repo := setupPostgresRepo(t)
	ctx := context.Background()

	id, err := repo.CreatePereval(ctx, raw(t, sampleRaw), images(t, `[{"url":"test1.jpg"}]`))
	require.NoError(t, err)

	got, err := repo.GetPereval(ctx, id)
	require.NoError(t, err)
	require.Equal(t, models.StatusNew, got.Status)
	requireSameJSON(t, raw(t, sampleRaw), got.RawData)

	byEmail, err := repo.ListPerevalsByEmail(ctx, "testuser@example.com")
	require.NoError(t, err)
	require.Len(t, byEmail, 1)

	next := raw(t, sampleRaw)
	next["title"] = "Новое название"
	require.NoError(t, repo.UpdatePereval(ctx, id, models.PerevalPatch{RawData: next}))

	next = raw(t, sampleRaw)
	next["user"] = map[string]any{"email": "hacker@example.com"}
	err = repo.UpdatePereval(ctx, id, models.PerevalPatch{RawData: next})
	var rv *repository.RuleViolation
	require.ErrorAs(t, err, &rv)

	got, err = repo.GetPereval(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Новое название", got.RawData["title"])
	require.NotNil(t, got.DateUpdated)

	imgID, err := repo.AddImage(ctx, []byte("GIF89a"))
	require.NoError(t, err)
	blob, err := repo.GetImage(ctx, imgID)
	require.NoError(t, err)
	require.Equal(t, []byte("GIF89a"), blob.Data)

	areas, err := repo.ListAreas(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, areas)
}
