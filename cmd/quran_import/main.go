package main

import (
	"context"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/joho/godotenv"

	"github.com/quranapp/backend/config"
	"github.com/quranapp/backend/internal/infrastructure/postgres"
	"github.com/quranapp/backend/internal/quran"
	"github.com/quranapp/backend/pkg/helpers"
)

// One-off importer: loads the full surah/ayah/juz dataset from equran.id into
// Postgres. Safe to re-run.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-quran-import", cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		logger.WithError(err).Fatal("postgres connection failed")
	}
	defer pool.Close()

	var es *elasticsearch.Client
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err = helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable, skipping ayah indexing")
			es = nil
		}
	}

	im := &quran.Importer{
		DB:        pool,
		Client:    quran.NewClient(cfg.QuranAPIBaseURL),
		ES:        es,
		AyahIndex: cfg.ESAyahIndex,
		Logger:    logger,
	}
	if err := im.Run(ctx); err != nil {
		logger.WithError(err).Fatal("import failed")
	}
}
