package main

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"smartrate/internal/adapters/observability"
	"smartrate/internal/app"
	"smartrate/internal/ml/artifact"
	"smartrate/internal/ml/forest"
	"smartrate/internal/shared"
	mysqlrepo "smartrate/internal/storage/mysql"
)

// Offline training job. Run to completion, one at a time; concurrent runs
// against the same artifact directory would race on the artifact files.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Int("trees", cfg.TrainTrees).
		Int("max_depth", cfg.TrainMaxDepth).
		Str("artifacts", cfg.ArtifactDir).
		Msg("trainer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	store := artifact.NewStore(cfg.ArtifactDir)
	trainer := app.NewTrainingService(repo, store, forest.Config{
		Trees:    cfg.TrainTrees,
		MaxDepth: cfg.TrainMaxDepth,
		Seed:     42,
	})

	report, err := trainer.Train(ctx)
	observability.ObserveTraining(err, report.MAE, report.R2)
	if err != nil {
		log.Fatal().Err(err).Msg("training failed")
	}

	log.Info().
		Int("raw_rows", report.RawRows).
		Int("train_rows", report.TrainRows).
		Int("test_rows", report.TestRows).
		Int("features", report.Features).
		Float64("mae", report.MAE).
		Float64("r2", report.R2).
		Msg("training completed")
}
