package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lamasa/erp/internal/costing"
)

// handleCostRecipe prices a recipe at today's known costs. Optional query
// parameters: yield overrides the recipe's declared output quantity,
// overhead_pct overrides the stored overhead rate for this call only.
func (s *server) handleCostRecipe(w http.ResponseWriter, r *http.Request) {
	recipeID, err := urlID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	yieldOverride, err := queryDecimal(r, "yield")
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	overheadOverride, err := queryDecimal(r, "overhead_pct")
	if err != nil {
		s.writeCoreError(w, err)
		return
	}

	breakdown, err := s.engine.CostRecipe(r.Context(), recipeID, yieldOverride, overheadOverride)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, breakdown)
}

// handleCostBatch prices a batch with the costs that were current on the
// batch date.
func (s *server) handleCostBatch(w http.ResponseWriter, r *http.Request) {
	batchID, err := urlID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	overheadOverride, err := queryDecimal(r, "overhead_pct")
	if err != nil {
		s.writeCoreError(w, err)
		return
	}

	breakdown, err := s.engine.CostBatch(r.Context(), batchID, overheadOverride)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, breakdown)
}

type materialCostRow struct {
	ProductID int64           `json:"product_id"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// handleMaterialCosts resolves unit costs for a comma-separated ids list.
// An optional date parameter restricts the purchase history considered.
func (s *server) handleMaterialCosts(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("ids"))
	if raw == "" {
		s.writeError(w, http.StatusBadRequest, "ids is required")
		return
	}
	ids := make([]int64, 0)
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			s.writeError(w, http.StatusBadRequest, "ids must be a comma-separated list of positive integers")
			return
		}
		ids = append(ids, id)
	}
	asOf, err := queryDate(r, "date")
	if err != nil {
		s.writeCoreError(w, err)
		return
	}

	costs, err := s.resolver.UnitCosts(r.Context(), ids, asOf)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}

	out := make([]materialCostRow, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, materialCostRow{ProductID: id, UnitCost: costs[id]})
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *server) handleCostingConfigGet(w http.ResponseWriter, r *http.Request) {
	cfg, ok, err := s.store.Overhead(r.Context())
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	if !ok {
		cfg = costing.DefaultOverheadConfig()
	}

	s.writeJSON(w, http.StatusOK, cfg)
}

type costingConfigPayload struct {
	Method string          `json:"method"`
	Pct    decimal.Decimal `json:"pct"`
}

func (s *server) handleCostingConfigPut(w http.ResponseWriter, r *http.Request) {
	var payload costingConfigPayload
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg, err := s.policy.SetConfig(r.Context(), payload.Method, payload.Pct)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, cfg)
}
