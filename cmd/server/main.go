package main

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lamasa/erp/internal/config"
	"github.com/lamasa/erp/internal/costing"
	"github.com/lamasa/erp/internal/db"
	"github.com/lamasa/erp/internal/migrations"
	"github.com/lamasa/erp/internal/seed"
	"github.com/lamasa/erp/internal/store"
)

type server struct {
	db       *sql.DB
	store    *store.Store
	engine   *costing.Engine
	resolver *costing.Resolver
	policy   *costing.Policy
	log      *zap.SugaredLogger
}

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		sugar.Fatalw("open database", "path", cfg.DBPath, "error", err)
	}
	defer database.Close()

	if err := migrations.Up(database, "migrations"); err != nil {
		sugar.Fatalw("run database migrations", "error", err)
	}

	stats, err := seed.Run(database)
	if err != nil {
		sugar.Fatalw("run startup seed", "error", err)
	}
	if stats.Inserts > 0 {
		sugar.Infow("startup seed applied", "inserts", stats.Inserts)
	}

	st := store.New(database)
	policy := costing.NewPolicy(st)
	srv := &server{
		db:       database,
		store:    st,
		engine:   costing.NewEngine(st, policy),
		resolver: costing.NewResolver(st),
		policy:   policy,
		log:      sugar,
	}

	addr := ":" + cfg.Port
	sugar.Infow("listening", "addr", addr, "env", cfg.Env)
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		sugar.Fatalw("server stopped", "error", err)
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsDev() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/products", s.handleProductsList)
	r.Post("/products", s.handleProductCreate)
	r.Put("/products/{id}", s.handleProductUpdate)

	r.Get("/purchases", s.handlePurchasesList)
	r.Post("/purchases", s.handlePurchaseCreate)

	r.Post("/recipes", s.handleRecipeCreate)
	r.Get("/recipes/{id}/ingredients", s.handleRecipeIngredientsList)
	r.Post("/recipes/{id}/ingredients", s.handleRecipeIngredientAdd)
	r.Get("/recipes/{id}/outputs", s.handleRecipeOutputsList)
	r.Post("/recipes/{id}/outputs", s.handleRecipeOutputAdd)

	r.Post("/batches", s.handleBatchCreate)
	r.Post("/batches/{id}/consumption", s.handleBatchConsumptionAdd)
	r.Post("/batches/{id}/outputs", s.handleBatchOutputAdd)

	r.Get("/costing/recipes/{id}", s.handleCostRecipe)
	r.Get("/costing/batches/{id}", s.handleCostBatch)
	r.Get("/costing/materials", s.handleMaterialCosts)
	r.Get("/costing/config", s.handleCostingConfigGet)
	r.Put("/costing/config", s.handleCostingConfigPut)

	r.Get("/payroll/periods", s.handlePayPeriodsList)
	r.Post("/payroll/periods", s.handlePayPeriodCreate)
	r.Get("/payroll/periods/{id}", s.handlePayPeriodDetail)
	r.Put("/payroll/periods/{id}", s.handlePayPeriodUpdate)
	r.Delete("/payroll/periods/{id}", s.handlePayPeriodDelete)
	r.Post("/payroll/periods/{id}/workers", s.handlePeriodWorkerAdd)
	r.Put("/payroll/periods/{id}/workers/{workerID}", s.handlePeriodWorkerUpdate)
	r.Delete("/payroll/periods/{id}/workers/{workerID}", s.handlePeriodWorkerDelete)
	r.Put("/payroll/periods/{id}/workers/{workerID}/days", s.handleWorkerDaysPut)
	r.Delete("/payroll/periods/{id}/workers/{workerID}/days/{date}", s.handleWorkerDayDelete)

	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}
