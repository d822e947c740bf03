package cmd

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"catalog-engine/config"
	"catalog-engine/driver"
	"catalog-engine/engine"
	"catalog-engine/gateway"
	"catalog-engine/hierarchy"
	"catalog-engine/indexer"
	"catalog-engine/logger"
	"catalog-engine/normalizer"
)

// deps holds the wired dependency graph shared by the serve and import
// commands.
type deps struct {
	cfg     *config.Config
	pool    *pgxpool.Pool
	store   *driver.RedisSetStore
	catalog *gateway.CatalogGateway
	lister  *gateway.ListerGateway
	writer  *gateway.WriterGateway
	engine  *engine.Engine
	indexer *indexer.Indexer
}

func buildDeps(ctx context.Context) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	pool, err := driver.NewPostgresPool(ctx, cfg.Database.URL())
	if err != nil {
		return nil, err
	}

	store, err := driver.NewRedisSetStore(cfg.Redis.URL, cfg.Redis.Timeout)
	if err != nil {
		pool.Close()
		return nil, err
	}

	catalog := gateway.NewCatalogGateway(driver.NewCatalogDriver(pool))
	lister := gateway.NewListerGateway(driver.NewProductListerDriver(pool))
	writer := gateway.NewWriterGateway(driver.NewCatalogWriterDriver(pool))

	resolver, err := hierarchy.NewResolver(catalog, logger.Logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	norm := normalizer.New(logger.Logger)
	ix := indexer.New(store, catalog, resolver, norm, cfg.Engine.IndexBatchSize, logger.Logger)

	eng := engine.New(store, catalog, resolver, engine.Config{
		TempKeyTTL:       cfg.Engine.TempKeyTTL,
		ResultCacheTTL:   cfg.Engine.ResultCacheTTL,
		BrandListLimit:   cfg.Engine.BrandListLimit,
		CountConcurrency: cfg.Engine.CountConcurrency,
	}, logger.Logger)

	return &deps{
		cfg:     cfg,
		pool:    pool,
		store:   store,
		catalog: catalog,
		lister:  lister,
		writer:  writer,
		engine:  eng,
		indexer: ix,
	}, nil
}

func (d *deps) close() {
	d.pool.Close()
}
