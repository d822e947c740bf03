// Package indexer rebuilds the facet index from the product catalog.
package indexer

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"catalog-engine/domain"
	"catalog-engine/hierarchy"
	"catalog-engine/normalizer"
	"catalog-engine/port"
	appOtel "catalog-engine/utils/otel"
)

// Indexer performs wholesale facet index rebuilds. A rebuild clears
// every facet and known-values key, then re-adds membership for each
// available product. Clearing first avoids stale entries from products
// that disappeared; the brief window where the index is partially built
// is an accepted tradeoff, matching the read-mostly usage between
// rebuilds.
type Indexer struct {
	store      port.SetStore
	catalog    port.CatalogStore
	hierarchy  *hierarchy.Resolver
	normalizer *normalizer.Normalizer
	batchSize  int
	log        *slog.Logger
}

func New(store port.SetStore, catalog port.CatalogStore, resolver *hierarchy.Resolver, n *normalizer.Normalizer, batchSize int, log *slog.Logger) *Indexer {
	if batchSize <= 0 {
		batchSize = 200
	}
	if log == nil {
		log = slog.Default()
	}
	return &Indexer{
		store:      store,
		catalog:    catalog,
		hierarchy:  resolver,
		normalizer: n,
		batchSize:  batchSize,
		log:        log,
	}
}

// Rebuild rebuilds the whole facet index. Per-product failures are
// counted and reported without aborting; the operation is idempotent, so
// rerunning after a partial failure is safe.
func (ix *Indexer) Rebuild(ctx context.Context) (domain.RebuildStats, error) {
	var stats domain.RebuildStats
	start := time.Now()

	ix.hierarchy.Invalidate()

	if err := ix.store.DeleteByPattern(ctx, domain.FacetKeyPrefix+"*"); err != nil {
		return stats, err
	}
	if err := ix.store.DeleteByPattern(ctx, domain.KnownValuesKeyPrefix+"*"); err != nil {
		return stats, err
	}

	categoriesSeen := make(map[int64]struct{})
	categorySlugs := make(map[int64]string)

	var afterID int64
	for {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		products, err := ix.catalog.ProductsForIndexing(ctx, afterID, ix.batchSize)
		if err != nil {
			return stats, err
		}
		if len(products) == 0 {
			break
		}

		for i := range products {
			product := &products[i]
			if err := ix.indexProduct(ctx, product, categoriesSeen, categorySlugs); err != nil {
				stats.Errors++
				ix.log.Error("product indexing failed",
					"product_id", product.ID,
					"external_id", product.ExternalID,
					"err", err,
				)
				continue
			}
			stats.Products++
		}
		afterID = products[len(products)-1].ID
	}

	stats.Categories = len(categoriesSeen)
	recordRebuild(ctx, stats, time.Since(start))
	ix.log.Info("facet index rebuilt",
		"categories", stats.Categories,
		"products", stats.Products,
		"errors", stats.Errors,
	)
	return stats, nil
}

// recordRebuild records indexing metrics for a completed rebuild.
func recordRebuild(ctx context.Context, stats domain.RebuildStats, duration time.Duration) {
	m := appOtel.Metrics
	if m == nil {
		return
	}
	attrs := attribute.String("operation", "rebuild")
	if stats.Products > 0 {
		m.ProductsIndexedTotal.Add(ctx, int64(stats.Products), metric.WithAttributes(attrs))
	}
	if stats.Errors > 0 {
		m.ErrorsTotal.Add(ctx, int64(stats.Errors), metric.WithAttributes(attrs))
	}
	m.RebuildDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs))
}

func (ix *Indexer) indexProduct(ctx context.Context, product *domain.Product, categoriesSeen map[int64]struct{}, categorySlugs map[int64]string) error {
	// Brand membership.
	if product.BrandSlug != "" {
		if err := ix.store.AddMembers(ctx, domain.FacetKey(domain.DimensionBrand, product.BrandSlug), product.ID); err != nil {
			return err
		}
		if err := ix.store.AddValues(ctx, domain.KnownValuesKey(domain.DimensionBrand), product.BrandSlug); err != nil {
			return err
		}
	}

	// Category membership, expanded to every ancestor so selecting a
	// parent category matches descendant products. Destinations are
	// sets, so re-adding is a no-op.
	categoryIDs := []int64{product.CategoryID}
	ancestors, err := ix.hierarchy.AncestorsOf(ctx, product.CategoryID)
	if err != nil {
		return err
	}
	categoryIDs = append(categoryIDs, ancestors...)

	for _, categoryID := range categoryIDs {
		if err := ix.store.AddMembers(ctx, domain.FacetKeyCategory(categoryID), product.ID); err != nil {
			return err
		}
		categoriesSeen[categoryID] = struct{}{}
	}

	slug, err := ix.categorySlug(ctx, product.CategoryID, categorySlugs)
	if err != nil {
		return err
	}
	if slug != "" {
		if err := ix.store.AddValues(ctx, domain.KnownValuesKey(domain.DimensionCategory), slug); err != nil {
			return err
		}
	}

	// Parameter attributes.
	for _, attr := range product.Attributes {
		_, valueSlug := ix.normalizer.Normalize(attr.ParameterSlug, attr.RawValue)
		if valueSlug == "" {
			continue
		}
		if err := ix.store.AddMembers(ctx, domain.FacetKey(attr.ParameterSlug, valueSlug), product.ID); err != nil {
			return err
		}
		if err := ix.store.AddValues(ctx, domain.KnownValuesKey(attr.ParameterSlug), valueSlug); err != nil {
			return err
		}
	}

	return nil
}

func (ix *Indexer) categorySlug(ctx context.Context, categoryID int64, cache map[int64]string) (string, error) {
	if slug, ok := cache[categoryID]; ok {
		return slug, nil
	}
	category, err := ix.catalog.CategoryByID(ctx, categoryID)
	if err != nil {
		return "", err
	}
	slug := ""
	if category != nil {
		slug = category.Slug
	}
	cache[categoryID] = slug
	return slug, nil
}
