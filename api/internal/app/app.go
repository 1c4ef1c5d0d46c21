// Package app assembles the scan pipeline from configuration; both binaries use it.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"sgpa-scan/api/internal/config"
	"sgpa-scan/api/internal/extract"
	"sgpa-scan/api/internal/extract/gateway"
	"sgpa-scan/api/internal/extract/gemini"
	"sgpa-scan/api/internal/logger"
	"sgpa-scan/api/internal/scan"
	"sgpa-scan/api/internal/store"
)

const purgeEvery = time.Hour

// Backends lists the extraction candidates: Gemini keys first, then gateway keys.
func Backends(cfg *config.Config) []extract.Backend {
	out := gemini.Backends(cfg.GeminiAPIKeys, cfg.GeminiModel)
	return append(out, gateway.Backends(cfg.GatewayAPIKeys, cfg.GatewayModel, cfg.GatewayURL)...)
}

// CacheScope keys cached answers by the models that produced them.
func CacheScope(cfg *config.Config) string {
	return "v1:" + cfg.GeminiModel + "+" + cfg.GatewayModel
}

// NewPipeline builds the scan pipeline. The returned close func releases the cache
// connection and is never nil.
func NewPipeline(ctx context.Context, cfg *config.Config, log *logger.Logger) (*scan.Pipeline, func(), error) {
	client := extract.New(Backends(cfg),
		extract.WithBackoff(cfg.ExtractBackoff),
		extract.WithLogger(log),
	)
	log.Info("extraction candidates", "backends", client.Backends())

	cache, closeFn, err := openCache(ctx, cfg, log)
	if err != nil {
		return nil, func() {}, err
	}
	return scan.New(client, cache, CacheScope(cfg), log), closeFn, nil
}

// openCache prefers postgres, then redis; with neither configured caching is off.
func openCache(ctx context.Context, cfg *config.Config, log *logger.Logger) (store.Cache, func(), error) {
	switch {
	case cfg.DatabaseURL != "":
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("sql.Open: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(time.Hour)

		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("db.Ping: %w", err)
		}
		repo := store.NewExtractionRepo(db, cfg.CacheTTL)
		if err := repo.EnsureSchema(pctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		log.Info("extraction cache: postgres", "db", config.SafeDSNSummary(cfg.DatabaseURL), "ttl", cfg.CacheTTL.String())

		stop := make(chan struct{})
		go purgeLoop(repo, cfg.CacheTTL, stop, log)
		return repo, func() { close(stop); _ = db.Close() }, nil

	case cfg.RedisAddr != "":
		rc := store.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rc.Ping(pctx).Err(); err != nil {
			_ = rc.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		log.Info("extraction cache: redis", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL.String())
		return store.NewRedisCache(rc, cfg.CacheTTL), func() { _ = rc.Close() }, nil

	default:
		log.Info("extraction cache disabled")
		return nil, func() {}, nil
	}
}

func purgeLoop(repo *store.ExtractionRepo, ttl time.Duration, stop <-chan struct{}, log *logger.Logger) {
	t := time.NewTicker(purgeEvery)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			n, err := repo.PurgeOlderThan(ctx, ttl)
			cancel()
			if err != nil {
				log.Warn("extraction cache purge failed", "error", err)
			} else if n > 0 {
				log.Info("extraction cache purged", "rows", n)
			}
		}
	}
}
