package main

import (
	"net/http"
	"testing"
)

func TestBatchCreateCopiesRecipeLines(t *testing.T) {
	srv := newTestServer(t)
	rawID, finishedID := seedKindProducts(t, srv)

	recipeID := serverExec(t, srv.db, `INSERT INTO recipes (name) VALUES ('Pan del día')`)
	serverExec(t, srv.db, `
		INSERT INTO recipe_ingredients (recipe_id, product_id, quantity) VALUES (?, ?, '100')
	`, recipeID, rawID)
	serverExec(t, srv.db, `
		INSERT INTO recipe_outputs (recipe_id, product_id, quantity) VALUES (?, ?, '10')
	`, recipeID, finishedID)

	rr := doRequest(t, srv, http.MethodPost, "/batches", map[string]any{
		"batch_date": "2026-08-20",
		"recipe_id":  recipeID,
	})
	batchID := createdID(t, rr)

	var consumption, outputs int
	if err := srv.db.QueryRow(`SELECT COUNT(*) FROM batch_consumption WHERE batch_id = ?`, batchID).Scan(&consumption); err != nil {
		t.Fatalf("count consumption: %v", err)
	}
	if err := srv.db.QueryRow(`SELECT COUNT(*) FROM batch_outputs WHERE batch_id = ?`, batchID).Scan(&outputs); err != nil {
		t.Fatalf("count outputs: %v", err)
	}
	if consumption != 1 || outputs != 1 {
		t.Fatalf("expected recipe lines copied into batch, got consumption=%d outputs=%d", consumption, outputs)
	}
}

func TestBatchCreateWithoutRecipe(t *testing.T) {
	srv := newTestServer(t)

	rr := doRequest(t, srv, http.MethodPost, "/batches", map[string]any{
		"batch_date": "2026-08-20",
	})
	createdID(t, rr)
}

func TestBatchCreateUnknownRecipeIs404(t *testing.T) {
	srv := newTestServer(t)

	rr := doRequest(t, srv, http.MethodPost, "/batches", map[string]any{
		"batch_date": "2026-08-20",
		"recipe_id":  3,
	})
	requireStatus(t, rr, http.StatusNotFound)
}

func TestBatchConsumptionMustBeRawMaterial(t *testing.T) {
	srv := newTestServer(t)
	_, finishedID := seedKindProducts(t, srv)

	rr := doRequest(t, srv, http.MethodPost, "/batches", map[string]any{
		"batch_date": "2026-08-20",
	})
	createdID(t, rr)

	rr = doRequest(t, srv, http.MethodPost, "/batches/1/consumption", map[string]any{
		"product_id": finishedID,
		"quantity":   "5",
	})
	requireStatus(t, rr, http.StatusBadRequest)
}

func TestBatchOutputAdd(t *testing.T) {
	srv := newTestServer(t)
	_, finishedID := seedKindProducts(t, srv)

	rr := doRequest(t, srv, http.MethodPost, "/batches", map[string]any{
		"batch_date": "2026-08-20",
	})
	createdID(t, rr)

	rr = doRequest(t, srv, http.MethodPost, "/batches/1/outputs", map[string]any{
		"product_id": finishedID,
		"quantity":   "12",
	})
	requireStatus(t, rr, http.StatusCreated)
}

func TestBatchLineOnMissingBatchIs404(t *testing.T) {
	srv := newTestServer(t)
	rawID, _ := seedKindProducts(t, srv)

	rr := doRequest(t, srv, http.MethodPost, "/batches/8/consumption", map[string]any{
		"product_id": rawID,
		"quantity":   "1",
	})
	requireStatus(t, rr, http.StatusNotFound)
}
