package main

import (
	"net/http"
	"testing"
)

func TestCreateProductAndList(t *testing.T) {
	srv := newTestServer(t)

	rr := doRequest(t, srv, http.MethodPost, "/products", map[string]any{
		"sku":           "MP-HAR",
		"name":          "Harina fuerte",
		"kind":          "RAW",
		"standard_cost": "12.5",
	})
	id := createdID(t, rr)

	rr = doRequest(t, srv, http.MethodGet, "/products", nil)
	requireStatus(t, rr, http.StatusOK)

	var products []productRow
	decodeBody(t, rr, &products)
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	got := products[0]
	if got.ID != id || got.SKU != "MP-HAR" || got.Kind != "RAW" || !got.Active {
		t.Fatalf("unexpected product row: %+v", got)
	}
	if !got.StandardCost.Valid || got.StandardCost.Decimal.String() != "12.5" {
		t.Fatalf("expected standard cost 12.5, got %+v", got.StandardCost)
	}
}

func TestCreateProductRejectsBadKind(t *testing.T) {
	srv := newTestServer(t)

	rr := doRequest(t, srv, http.MethodPost, "/products", map[string]any{
		"sku":  "X-1",
		"name": "Algo",
		"kind": "SERVICE",
	})
	requireStatus(t, rr, http.StatusBadRequest)
}

func TestCreateRawProductRequiresStandardCost(t *testing.T) {
	srv := newTestServer(t)

	rr := doRequest(t, srv, http.MethodPost, "/products", map[string]any{
		"sku":  "MP-SIN",
		"name": "Sin costo",
		"kind": "RAW",
	})
	requireStatus(t, rr, http.StatusBadRequest)
}

func TestCreateFinishedProductWithoutStandardCost(t *testing.T) {
	srv := newTestServer(t)

	rr := doRequest(t, srv, http.MethodPost, "/products", map[string]any{
		"sku":  "PT-PAN",
		"name": "Pan artesanal",
		"kind": "FINISHED",
	})
	createdID(t, rr)
}

func TestUpdateProductUnknownIDIs404(t *testing.T) {
	srv := newTestServer(t)

	rr := doRequest(t, srv, http.MethodPut, "/products/99", map[string]any{
		"sku":           "MP-HAR",
		"name":          "Harina",
		"kind":          "RAW",
		"standard_cost": "10",
	})
	requireStatus(t, rr, http.StatusNotFound)

	var resp errorResponse
	decodeBody(t, rr, &resp)
	if resp.Error != "product not found" {
		t.Fatalf("unexpected error message: %q", resp.Error)
	}
}

func TestUpdateProductCanDeactivate(t *testing.T) {
	srv := newTestServer(t)

	rr := doRequest(t, srv, http.MethodPost, "/products", map[string]any{
		"sku":           "MP-SAL",
		"name":          "Sal",
		"kind":          "RAW",
		"standard_cost": "2",
	})
	id := createdID(t, rr)

	rr = doRequest(t, srv, http.MethodPut, "/products/1", map[string]any{
		"sku":           "MP-SAL",
		"name":          "Sal refinada",
		"kind":          "RAW",
		"standard_cost": "2.25",
		"active":        false,
	})
	requireStatus(t, rr, http.StatusOK)

	var name string
	var active bool
	err := srv.db.QueryRow(`SELECT name, active FROM products WHERE id = ?`, id).Scan(&name, &active)
	if err != nil {
		t.Fatalf("read product back: %v", err)
	}
	if name != "Sal refinada" || active {
		t.Fatalf("expected renamed inactive product, got name=%q active=%v", name, active)
	}
}
