package main

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"smartrate/internal/adapters/observability"
	"smartrate/internal/app"
	"smartrate/internal/shared"
	mysqlrepo "smartrate/internal/storage/mysql"
)

// Seeds the historical store with synthetic bookings. Destructive: existing
// hotels, room types and bookings are wiped first.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Int("days_back", cfg.SeedDaysBack).
		Int("days_forward", cfg.SeedDaysForward).
		Int64("seed", cfg.SeedRandSeed).
		Msg("seeder starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	seeder := app.NewSeedService(mysqlrepo.New(db), cfg.SeedWorkers)
	report, err := seeder.Seed(ctx, app.SeedParams{
		DaysBack:    cfg.SeedDaysBack,
		DaysForward: cfg.SeedDaysForward,
		Seed:        cfg.SeedRandSeed,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}

	log.Info().
		Int("hotels", report.Hotels).
		Int("room_types", report.RoomTypes).
		Int("bookings", report.Bookings).
		Msg("seed completed")
}
