package indexer

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-engine/domain"
	"catalog-engine/driver"
	"catalog-engine/hierarchy"
	"catalog-engine/internal/catalogtest"
	"catalog-engine/normalizer"
)

func ptr(v int64) *int64 { return &v }

func testCatalog() *catalogtest.Catalog {
	return &catalogtest.Catalog{
		Categories: []domain.Category{
			{ID: 1, ExternalID: "1", Name: "Electronics", Slug: "electronics-1"},
			{ID: 2, ExternalID: "2", Name: "Phones", Slug: "phones-2", ParentID: ptr(1)},
			{ID: 3, ExternalID: "3", Name: "Smartphones", Slug: "smartphones-3", ParentID: ptr(2)},
		},
		Brands: []domain.Brand{
			{ID: 1, Name: "Acme", Slug: "acme"},
			{ID: 2, Name: "Globex", Slug: "globex"},
		},
		Parameters: []domain.Parameter{
			{ID: 1, Name: "Color", Slug: "color"},
		},
		Products: []domain.Product{
			{
				ID: 10, ExternalID: "p10", Name: "Phone A", Available: true,
				BrandID: 1, BrandSlug: "acme", CategoryID: 3,
				Attributes: []domain.ProductAttribute{
					{ParameterSlug: "color", ParameterName: "Color", RawValue: "Red", Value: "Red", ValueSlug: "red"},
				},
			},
			{
				ID: 11, ExternalID: "p11", Name: "Phone B", Available: true,
				BrandID: 2, BrandSlug: "globex", CategoryID: 2,
				Attributes: []domain.ProductAttribute{
					{ParameterSlug: "color", ParameterName: "Color", RawValue: "Dark Blue", Value: "Dark Blue", ValueSlug: "dark_blue"},
				},
			},
			{
				ID: 12, ExternalID: "p12", Name: "Old Phone", Available: false,
				BrandID: 1, BrandSlug: "acme", CategoryID: 3,
			},
		},
	}
}

func newIndexer(t *testing.T, catalog *catalogtest.Catalog, store *driver.MemorySetStore) *Indexer {
	t.Helper()
	resolver, err := hierarchy.NewResolver(catalog, nil)
	require.NoError(t, err)
	return New(store, catalog, resolver, normalizer.New(nil), 100, nil)
}

func members(t *testing.T, store *driver.MemorySetStore, key string) []int64 {
	t.Helper()
	ids, err := store.Members(context.Background(), key)
	require.NoError(t, err)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func TestRebuildIndexesAvailableProducts(t *testing.T) {
	ctx := context.Background()
	store := driver.NewMemorySetStore()
	ix := newIndexer(t, testCatalog(), store)

	stats, err := ix.Rebuild(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Products, "unavailable products are not indexed")
	assert.Equal(t, 3, stats.Categories)
	assert.Zero(t, stats.Errors)

	assert.Equal(t, []int64{10}, members(t, store, "facet:brand:acme"))
	assert.Equal(t, []int64{11}, members(t, store, "facet:brand:globex"))
	assert.Equal(t, []int64{10}, members(t, store, "facet:color:red"))
	assert.Equal(t, []int64{11}, members(t, store, "facet:color:dark_blue"))
}

func TestRebuildAncestorExpansionIsTransitive(t *testing.T) {
	ctx := context.Background()
	store := driver.NewMemorySetStore()
	ix := newIndexer(t, testCatalog(), store)

	_, err := ix.Rebuild(ctx)
	require.NoError(t, err)

	// Product 10 sits in the grandchild category 3 and must appear in
	// its own set, the parent's and the grandparent's.
	assert.Equal(t, []int64{10}, members(t, store, "facet:category:3"))
	assert.Equal(t, []int64{10, 11}, members(t, store, "facet:category:2"))
	assert.Equal(t, []int64{10, 11}, members(t, store, "facet:category:1"))
}

func TestRebuildRegistersKnownValues(t *testing.T) {
	ctx := context.Background()
	store := driver.NewMemorySetStore()
	ix := newIndexer(t, testCatalog(), store)

	_, err := ix.Rebuild(ctx)
	require.NoError(t, err)

	brands, err := store.Values(ctx, "knownValues:brand")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"acme", "globex"}, brands)

	colors, err := store.Values(ctx, "knownValues:color")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"red", "dark_blue"}, colors)

	categories, err := store.Values(ctx, "knownValues:category")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"smartphones-3", "phones-2"}, categories)
}

func TestRebuildIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := driver.NewMemorySetStore()
	ix := newIndexer(t, testCatalog(), store)

	_, err := ix.Rebuild(ctx)
	require.NoError(t, err)
	firstBrand := members(t, store, "facet:brand:acme")
	firstCategory := members(t, store, "facet:category:1")

	_, err = ix.Rebuild(ctx)
	require.NoError(t, err)

	assert.Equal(t, firstBrand, members(t, store, "facet:brand:acme"))
	assert.Equal(t, firstCategory, members(t, store, "facet:category:1"))
}

func TestRebuildPrunesStaleEntries(t *testing.T) {
	ctx := context.Background()
	catalog := testCatalog()
	store := driver.NewMemorySetStore()
	ix := newIndexer(t, catalog, store)

	_, err := ix.Rebuild(ctx)
	require.NoError(t, err)
	require.Equal(t, []int64{10}, members(t, store, "facet:brand:acme"))

	// Product 10 goes unavailable; the rebuild must prune it, not just
	// skip re-adding it.
	catalog.Products[0].Available = false

	_, err = ix.Rebuild(ctx)
	require.NoError(t, err)

	assert.Empty(t, members(t, store, "facet:brand:acme"))
	assert.Empty(t, members(t, store, "facet:color:red"))
}
