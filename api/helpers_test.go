package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/garnizeh/pereval/api"
	dbfs "github.com/garnizeh/pereval/db"
	"github.com/garnizeh/pereval/internal/db"
	"github.com/garnizeh/pereval/internal/repository/sqlrepo"
)

func init() {
	api.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// setupServer serves the full router over a migrated in-memory SQLite store.
func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	d, err := db.New(ctx, db.SQLite, "file:"+t.Name()+"?mode=memory&cache=shared", nil)
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
		d.Close()
		t.Fatalf("migrate: %v", err)
	}

	srv := httptest.NewServer(api.SetupRoutes("test", "now", sqlrepo.New(d, nil)))
	t.Cleanup(func() {
		srv.Close()
		d.Close()
	})
	return srv
}

func serve(t *testing.T, store api.Store) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(api.SetupRoutes("test", "now", store))
	t.Cleanup(srv.Close)
	return srv
}

// doJSON sends body (marshalled unless it is already a string) and decodes
// the JSON response into out when out is non-nil.
func doJSON(t *testing.T, srv *httptest.Server, method, path string, body any, out any) int {
	t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, srv.URL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()

	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return res.StatusCode
}

func decodeBody(t *testing.T, res *http.Response, out any) {
	t.Helper()
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}
