package shared

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	ArtifactDir string
	CacheTTL    time.Duration

	// trainer
	TrainTrees    int
	TrainMaxDepth int

	// seeder
	SeedWorkers     int
	SeedDaysBack    int
	SeedDaysForward int
	SeedRandSeed    int64

	// api
	RecommendRPS int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	return Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/smartrate?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		ArtifactDir: env("ARTIFACT_DIR", "artifacts"),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,

		TrainTrees:    atoi("TRAIN_TREES", 200),
		TrainMaxDepth: atoi("TRAIN_MAX_DEPTH", 0),

		SeedWorkers:     atoi("SEED_WORKERS", 4),
		SeedDaysBack:    atoi("SEED_DAYS_BACK", 120),
		SeedDaysForward: atoi("SEED_DAYS_FORWARD", 60),
		SeedRandSeed:    int64(atoi("SEED_RAND_SEED", 1)),

		RecommendRPS: atoi("RECOMMEND_RPS", 50),
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
