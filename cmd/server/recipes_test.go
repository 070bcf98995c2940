package main

import (
	"net/http"
	"testing"
)

func seedKindProducts(t *testing.T, srv *server) (rawID, finishedID int64) {
	t.Helper()
	rawID = serverExec(t, srv.db, `
		INSERT INTO products (sku, name, kind, standard_cost) VALUES ('MP-HAR', 'Harina', 'RAW', '13')
	`)
	finishedID = serverExec(t, srv.db, `
		INSERT INTO products (sku, name, kind) VALUES ('PT-PAN', 'Pan', 'FINISHED')
	`)
	return rawID, finishedID
}

func TestRecipeIngredientMustBeRawMaterial(t *testing.T) {
	srv := newTestServer(t)
	_, finishedID := seedKindProducts(t, srv)

	rr := doRequest(t, srv, http.MethodPost, "/recipes", map[string]any{"name": "Pan del día"})
	createdID(t, rr)

	rr = doRequest(t, srv, http.MethodPost, "/recipes/1/ingredients", map[string]any{
		"product_id": finishedID,
		"quantity":   "1",
	})
	requireStatus(t, rr, http.StatusBadRequest)
}

func TestRecipeOutputMustBeFinishedProduct(t *testing.T) {
	srv := newTestServer(t)
	rawID, _ := seedKindProducts(t, srv)

	rr := doRequest(t, srv, http.MethodPost, "/recipes", map[string]any{"name": "Pan del día"})
	createdID(t, rr)

	rr = doRequest(t, srv, http.MethodPost, "/recipes/1/outputs", map[string]any{
		"product_id": rawID,
		"quantity":   "10",
	})
	requireStatus(t, rr, http.StatusBadRequest)
}

func TestRecipeLineUnknownProductIs404(t *testing.T) {
	srv := newTestServer(t)

	rr := doRequest(t, srv, http.MethodPost, "/recipes", map[string]any{"name": "Pan"})
	createdID(t, rr)

	rr = doRequest(t, srv, http.MethodPost, "/recipes/1/ingredients", map[string]any{
		"product_id": 77,
		"quantity":   "1",
	})
	requireStatus(t, rr, http.StatusNotFound)
}

func TestRecipeLinesRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	rawID, finishedID := seedKindProducts(t, srv)

	rr := doRequest(t, srv, http.MethodPost, "/recipes", map[string]any{"name": "Pan del día"})
	createdID(t, rr)

	rr = doRequest(t, srv, http.MethodPost, "/recipes/1/ingredients", map[string]any{
		"product_id": rawID,
		"quantity":   "100",
		"note":       "tamizada",
	})
	requireStatus(t, rr, http.StatusCreated)

	rr = doRequest(t, srv, http.MethodPost, "/recipes/1/outputs", map[string]any{
		"product_id": finishedID,
		"quantity":   "10",
	})
	requireStatus(t, rr, http.StatusCreated)

	rr = doRequest(t, srv, http.MethodGet, "/recipes/1/ingredients", nil)
	requireStatus(t, rr, http.StatusOK)
	var lines []recipeLineRow
	decodeBody(t, rr, &lines)
	if len(lines) != 1 || lines[0].Name != "Harina" || lines[0].Note != "tamizada" {
		t.Fatalf("unexpected ingredients: %+v", lines)
	}

	rr = doRequest(t, srv, http.MethodGet, "/recipes/1/outputs", nil)
	requireStatus(t, rr, http.StatusOK)
	decodeBody(t, rr, &lines)
	if len(lines) != 1 || lines[0].Name != "Pan" || lines[0].Quantity.String() != "10" {
		t.Fatalf("unexpected outputs: %+v", lines)
	}
}

func TestRecipeLineOnMissingRecipeIs404(t *testing.T) {
	srv := newTestServer(t)
	rawID, _ := seedKindProducts(t, srv)

	rr := doRequest(t, srv, http.MethodPost, "/recipes/5/ingredients", map[string]any{
		"product_id": rawID,
		"quantity":   "1",
	})
	requireStatus(t, rr, http.StatusNotFound)
}
