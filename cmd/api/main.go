package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "smartrate/internal/adapters/http_server"
	"smartrate/internal/adapters/observability"
	redisad "smartrate/internal/adapters/redis"
	"smartrate/internal/app"
	"smartrate/internal/ml/artifact"
	"smartrate/internal/shared"
	mysqlrepo "smartrate/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	store := artifact.NewStore(cfg.ArtifactDir)
	pred := app.NewPredictionService(store)
	pricing := app.NewPricingService(repo, cache, pred, cfg.CacheTTL)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Repo: repo, Pricing: pricing, RecommendRPS: cfg.RecommendRPS})

	log.Info().Str("addr", cfg.HTTPAddr).Str("artifacts", cfg.ArtifactDir).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
