package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/lamasa/erp/internal/costing"
	"github.com/lamasa/erp/internal/db"
	"github.com/lamasa/erp/internal/migrations"
	"github.com/lamasa/erp/internal/store"
)

func newTestServer(t *testing.T) *server {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "server-test.db")
	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	if err := migrations.Up(database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	st := store.New(database)
	policy := costing.NewPolicy(st)
	return &server{
		db:       database,
		store:    st,
		engine:   costing.NewEngine(st, policy),
		resolver: costing.NewResolver(st),
		policy:   policy,
		log:      zap.NewNop().Sugar(),
	}
}

// doRequest runs a request through the full chi route table so URL
// parameters resolve the same way they do in production.
func doRequest(t *testing.T, srv *server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

func requireStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rr.Code, rr.Body.String())
	}
}

func serverExec(t *testing.T, database *sql.DB, query string, args ...any) int64 {
	t.Helper()

	result, err := database.Exec(query, args...)
	if err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("last insert id: %v", err)
	}
	return id
}

func createdID(t *testing.T, rr *httptest.ResponseRecorder) int64 {
	t.Helper()
	requireStatus(t, rr, http.StatusCreated)
	var payload struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, rr, &payload)
	if payload.ID <= 0 {
		t.Fatalf("expected a positive id, got %d", payload.ID)
	}
	return payload.ID
}
