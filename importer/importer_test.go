package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-engine/domain"
	"catalog-engine/normalizer"
)

const feed = `<?xml version="1.0" encoding="UTF-8"?>
<yml_catalog date="2026-08-01 12:00">
  <shop>
    <categories>
      <category id="1">Electronics</category>
      <category id="2" parentId="1">Phones</category>
      <category id="9">Globex</category>
    </categories>
    <offers>
      <offer id="p1" available="true">
        <name>Phone X</name>
        <price>499.00</price>
        <currencyId>UAH</currencyId>
        <categoryId>2</categoryId>
        <stock_quantity>3</stock_quantity>
        <vendor>Acme</vendor>
        <vendorCode>PX-1</vendorCode>
        <picture>https://cdn.example.com/p1.jpg</picture>
        <picture>https://cdn.example.com/p1-back.jpg</picture>
        <param name="Color">Red</param>
        <param name="Бренд">Acme</param>
      </offer>
      <offer id="p2" available="false">
        <name>No Price</name>
        <price>0</price>
        <categoryId>2</categoryId>
        <vendor>Acme</vendor>
      </offer>
      <offer id="p3" available="true">
        <name>Orphan</name>
        <price>10</price>
        <categoryId>404</categoryId>
        <vendor>Acme</vendor>
      </offer>
    </offers>
  </shop>
</yml_catalog>`

type fakeCategory struct {
	name   string
	slug   string
	parent string
}

type fakeProduct struct {
	record     domain.ImportProduct
	brandID    int64
	categoryID int64
}

// fakeWriter is an in-memory port.CatalogWriter recording what the
// importer persists.
type fakeWriter struct {
	categories map[string]*fakeCategory
	brands     map[string]int64
	products   map[string]*fakeProduct
	attrs      map[int64][]domain.ProductAttribute
	pictures   map[int64][]string
	nextID     int64
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{
		categories: make(map[string]*fakeCategory),
		brands:     make(map[string]int64),
		products:   make(map[string]*fakeProduct),
		attrs:      make(map[int64][]domain.ProductAttribute),
		pictures:   make(map[int64][]string),
	}
}

func (w *fakeWriter) id() int64 {
	w.nextID++
	return w.nextID
}

func (w *fakeWriter) UpsertCategory(_ context.Context, externalID, name, slug string) (int64, error) {
	w.categories[externalID] = &fakeCategory{name: name, slug: slug}
	return w.id(), nil
}

func (w *fakeWriter) SetCategoryParent(_ context.Context, externalID, parentExternalID string) error {
	category, ok := w.categories[externalID]
	if !ok {
		return &strayError{externalID}
	}
	if _, ok := w.categories[parentExternalID]; !ok {
		return &strayError{parentExternalID}
	}
	category.parent = parentExternalID
	return nil
}

type strayError struct{ id string }

func (e *strayError) Error() string { return "category not found: " + e.id }

func (w *fakeWriter) BrandSlugExists(_ context.Context, slug string) (bool, error) {
	_, ok := w.brands[slug]
	return ok, nil
}

func (w *fakeWriter) UpsertBrand(_ context.Context, name, slug string) (int64, error) {
	if id, ok := w.brands[slug]; ok {
		return id, nil
	}
	id := w.id()
	w.brands[slug] = id
	return id, nil
}

func (w *fakeWriter) CategoryIDByExternalID(_ context.Context, externalID string) (int64, bool, error) {
	if _, ok := w.categories[externalID]; ok {
		return 1, true, nil
	}
	return 0, false, nil
}

func (w *fakeWriter) UpsertProduct(_ context.Context, p domain.ImportProduct, brandID, categoryID int64) (int64, error) {
	id := w.id()
	w.products[p.ExternalID] = &fakeProduct{record: p, brandID: brandID, categoryID: categoryID}
	return id, nil
}

func (w *fakeWriter) ReplaceProductAttributes(_ context.Context, productID int64, attrs []domain.ProductAttribute) error {
	w.attrs[productID] = attrs
	return nil
}

func (w *fakeWriter) ReplaceProductPictures(_ context.Context, productID int64, urls []string) error {
	w.pictures[productID] = urls
	return nil
}

type fakeRebuilder struct {
	calls int
}

func (r *fakeRebuilder) Rebuild(context.Context) (domain.RebuildStats, error) {
	r.calls++
	return domain.RebuildStats{Products: 1}, nil
}

func TestImportFeed(t *testing.T) {
	writer := newFakeWriter()
	rebuilder := &fakeRebuilder{}
	im := New(writer, normalizer.New(nil), rebuilder, nil)

	stats, err := im.Import(context.Background(), strings.NewReader(feed))
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Categories)
	assert.Equal(t, 1, stats.Products, "offers without price or category fail validation")
	assert.Equal(t, 2, stats.Errors)

	electronics := writer.categories["1"]
	require.NotNil(t, electronics)
	assert.Equal(t, "electronics-1", electronics.slug)

	phones := writer.categories["2"]
	require.NotNil(t, phones)
	assert.Equal(t, "phones-2", phones.slug)
	assert.Equal(t, "1", phones.parent, "parents are wired in the second pass")

	product := writer.products["p1"]
	require.NotNil(t, product)
	assert.True(t, product.record.Available)
	assert.Equal(t, 499.0, product.record.Price)
	assert.Equal(t, 3, product.record.Stock)
	assert.Equal(t, "Acme", product.record.Vendor)

	assert.Contains(t, writer.brands, "acme")

	assert.Equal(t, 1, rebuilder.calls, "import triggers exactly one rebuild")
	require.NotNil(t, stats.Rebuild)
	assert.Equal(t, 1, stats.Rebuild.Products)
}

func TestImportAttributesSkipBrandParam(t *testing.T) {
	writer := newFakeWriter()
	im := New(writer, normalizer.New(nil), nil, nil)

	_, err := im.Import(context.Background(), strings.NewReader(feed))
	require.NoError(t, err)

	var attrs []domain.ProductAttribute
	for _, a := range writer.attrs {
		if len(a) > 0 {
			attrs = a
		}
	}
	require.Len(t, attrs, 1, "the vendor-duplicating param is dropped")
	assert.Equal(t, "color", attrs[0].ParameterSlug)
	assert.Equal(t, "Red", attrs[0].RawValue)
	assert.Equal(t, "red", attrs[0].ValueSlug)
}

func TestImportCyrillicParamsFilterable(t *testing.T) {
	const cyrillicFeed = `<?xml version="1.0" encoding="UTF-8"?>
<yml_catalog date="2026-08-01 12:00">
  <shop>
    <categories>
      <category id="1">Одяг</category>
    </categories>
    <offers>
      <offer id="p10" available="true">
        <name>Сорочка</name>
        <price>700</price>
        <categoryId>1</categoryId>
        <vendor>Acme</vendor>
        <param name="Колір">Червоний</param>
      </offer>
    </offers>
  </shop>
</yml_catalog>`

	writer := newFakeWriter()
	im := New(writer, normalizer.New(nil), nil, nil)

	stats, err := im.Import(context.Background(), strings.NewReader(cyrillicFeed))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Products)

	assert.Equal(t, "odiah-1", writer.categories["1"].slug)

	var attrs []domain.ProductAttribute
	for _, a := range writer.attrs {
		if len(a) > 0 {
			attrs = a
		}
	}
	require.Len(t, attrs, 1)
	assert.Equal(t, "kolir", attrs[0].ParameterSlug)
	assert.Equal(t, "Red", attrs[0].Value)
	assert.Equal(t, "chervonyi", attrs[0].ValueSlug)

	// The derived dimension must be filterable through the query
	// boundary, or the listed facet group could never be selected.
	err = domain.ValidateSelection(domain.FilterSelection{
		attrs[0].ParameterSlug: {attrs[0].ValueSlug},
	})
	assert.NoError(t, err)
}

func TestImportSkipsCategoryCollidingWithBrand(t *testing.T) {
	writer := newFakeWriter()
	writer.brands["globex"] = 42
	writer.brands["electronics"] = 43

	im := New(writer, normalizer.New(nil), nil, nil)
	stats, err := im.Import(context.Background(), strings.NewReader(feed))
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Categories)
	assert.NotContains(t, writer.categories, "9",
		"a childless category shadowing a brand is skipped")
	assert.Contains(t, writer.categories, "1",
		"a parent category is kept even on brand collision")
}

func TestImportCategoriesOnlyFeed(t *testing.T) {
	writer := newFakeWriter()
	im := New(writer, normalizer.New(nil), nil, nil)

	stats, err := im.Import(context.Background(), strings.NewReader(
		`<yml_catalog><shop><categories><category id="1">Toys</category></categories></offers></shop></yml_catalog>`))
	require.Error(t, err, "mismatched tags are a parse error")
	_ = stats

	stats, err = im.Import(context.Background(), strings.NewReader(
		`<yml_catalog><shop><categories><category id="1">Toys</category></categories></shop></yml_catalog>`))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Categories)
	assert.Contains(t, writer.categories, "1")
}
