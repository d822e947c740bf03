package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-engine/driver"
)

func newMockedGateway(t *testing.T) (*CatalogGateway, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewCatalogGateway(driver.NewCatalogDriver(mock)), mock
}

func TestCategoryByIDOrSlug(t *testing.T) {
	ctx := context.Background()

	t.Run("numeric id lookup", func(t *testing.T) {
		gw, mock := newMockedGateway(t)

		rows := pgxmock.NewRows([]string{"id", "external_id", "name", "slug", "parent_id", "has_children"}).
			AddRow(int64(2), "2", "Phones", "phones-2", ptr(int64(1)), false)
		mock.ExpectQuery(`SELECT c.id, c.external_id, c.name, c.slug, c.parent_id`).
			WithArgs(int64(2)).
			WillReturnRows(rows)

		category, err := gw.CategoryByIDOrSlug(ctx, "2")
		require.NoError(t, err)
		require.NotNil(t, category)
		assert.Equal(t, "Phones", category.Name)
		assert.Equal(t, "phones-2", category.Slug)
		require.NotNil(t, category.ParentID)
		assert.Equal(t, int64(1), *category.ParentID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("slug fallback", func(t *testing.T) {
		gw, mock := newMockedGateway(t)

		rows := pgxmock.NewRows([]string{"id", "external_id", "name", "slug", "parent_id", "has_children"}).
			AddRow(int64(1), "1", "Electronics", "electronics-1", (*int64)(nil), true)
		mock.ExpectQuery(`SELECT c.id, c.external_id, c.name, c.slug, c.parent_id`).
			WithArgs("electronics-1").
			WillReturnRows(rows)

		category, err := gw.CategoryByIDOrSlug(ctx, "electronics-1")
		require.NoError(t, err)
		require.NotNil(t, category)
		assert.True(t, category.IsRoot())
		assert.True(t, category.HasChildren)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("miss returns nil without error", func(t *testing.T) {
		gw, mock := newMockedGateway(t)

		mock.ExpectQuery(`SELECT c.id, c.external_id, c.name, c.slug, c.parent_id`).
			WithArgs("nope").
			WillReturnRows(pgxmock.NewRows([]string{"id", "external_id", "name", "slug", "parent_id", "has_children"}))

		category, err := gw.CategoryByIDOrSlug(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, category)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error is wrapped", func(t *testing.T) {
		gw, mock := newMockedGateway(t)

		mock.ExpectQuery(`SELECT c.id, c.external_id, c.name, c.slug, c.parent_id`).
			WithArgs("boom").
			WillReturnError(errors.New("connection refused"))

		_, err := gw.CategoryByIDOrSlug(ctx, "boom")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CategoryByIDOrSlug")
	})
}

func TestBrandsWithAvailableProducts(t *testing.T) {
	ctx := context.Background()
	gw, mock := newMockedGateway(t)

	rows := pgxmock.NewRows([]string{"id", "name", "slug"}).
		AddRow(int64(1), "Acme", "acme").
		AddRow(int64(2), "Globex", "globex")
	mock.ExpectQuery(`SELECT DISTINCT b.id, b.name, b.slug`).
		WithArgs([]int64{2, 3}, 50).
		WillReturnRows(rows)

	brands, err := gw.BrandsWithAvailableProducts(ctx, []int64{2, 3}, 50)
	require.NoError(t, err)
	require.Len(t, brands, 2)
	assert.Equal(t, "acme", brands[0].Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParametersWithValuesGroupsAndDedupes(t *testing.T) {
	ctx := context.Background()
	gw, mock := newMockedGateway(t)

	rows := pgxmock.NewRows([]string{"id", "name", "slug", "value", "value_slug"}).
		AddRow(int64(10), "Color", "color", "Red", "red").
		AddRow(int64(10), "Color", "color", "Red", "red").
		AddRow(int64(10), "Color", "color", "Dark Blue", "dark_blue").
		AddRow(int64(11), "Material", "material", "80% Cotton, 20% Polyester", "80_cotton_20_polyester")
	mock.ExpectQuery(`SELECT pa.id, pa.name, pa.slug, pp.value, pp.value_slug`).
		WithArgs([]int64{2}).
		WillReturnRows(rows)

	params, err := gw.ParametersWithValues(ctx, []int64{2}, nil)
	require.NoError(t, err)
	require.Len(t, params, 2)

	assert.Equal(t, "color", params[0].Parameter.Slug)
	assert.Len(t, params[0].Values, 2, "duplicate value slugs must collapse")
	assert.Equal(t, "material", params[1].Parameter.Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveParameterValueSlug(t *testing.T) {
	ctx := context.Background()
	gw, mock := newMockedGateway(t)

	mock.ExpectQuery(`SELECT pp.value_slug`).
		WithArgs("color", "Dark Blue").
		WillReturnRows(pgxmock.NewRows([]string{"value_slug"}).AddRow("dark_blue"))

	slug, ok, err := gw.ResolveParameterValueSlug(ctx, "color", "Dark Blue")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark_blue", slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductsForIndexingAttachesAttributes(t *testing.T) {
	ctx := context.Background()
	gw, mock := newMockedGateway(t)

	productRows := pgxmock.NewRows([]string{
		"id", "external_id", "name", "price", "stock", "available", "currency",
		"brand_id", "brand_name", "brand_slug", "category_id",
	}).
		AddRow(int64(1), "p1", "Phone X", 499.0, 3, true, "UAH", int64(7), "Acme", "acme", int64(2)).
		AddRow(int64(2), "p2", "Phone Y", 599.0, 1, true, "UAH", int64(7), "Acme", "acme", int64(2))
	mock.ExpectQuery(`FROM products p`).
		WithArgs(int64(0), 100).
		WillReturnRows(productRows)

	attrRows := pgxmock.NewRows([]string{"product_id", "name", "slug", "value", "value_slug"}).
		AddRow(int64(1), "Color", "color", "Red", "red").
		AddRow(int64(1), "Size", "size", "XL", "xl").
		AddRow(int64(2), "Color", "color", "Blue", "blue")
	mock.ExpectQuery(`FROM product_parameters pp`).
		WithArgs([]int64{1, 2}).
		WillReturnRows(attrRows)

	products, err := gw.ProductsForIndexing(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Len(t, products[0].Attributes, 2)
	assert.Len(t, products[1].Attributes, 1)
	assert.Equal(t, "red", products[0].Attributes[0].ValueSlug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func ptr[T any](v T) *T { return &v }
