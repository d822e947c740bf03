package driver

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
)

// CatalogDriver runs the read-side catalog queries. Rows come back as
// driver models; the gateway layer converts them to domain entities.
type CatalogDriver struct {
	pool Querier
}

func NewCatalogDriver(pool Querier) *CatalogDriver {
	return &CatalogDriver{pool: pool}
}

const categoryColumns = `c.id, c.external_id, c.name, c.slug, c.parent_id,
	EXISTS(SELECT 1 FROM categories ch WHERE ch.parent_id = c.id) AS has_children`

func (d *CatalogDriver) scanCategories(rows pgx.Rows) ([]CategoryRow, error) {
	defer rows.Close()

	var out []CategoryRow
	for rows.Next() {
		var row CategoryRow
		if err := rows.Scan(&row.ID, &row.ExternalID, &row.Name, &row.Slug, &row.ParentID, &row.HasChildren); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// CategoryByIDOrSlug tries a numeric id lookup first, then slug or
// display name. A miss returns (nil, nil).
func (d *CatalogDriver) CategoryByIDOrSlug(ctx context.Context, value string) (*CategoryRow, error) {
	if id, err := strconv.ParseInt(value, 10, 64); err == nil {
		row, err := d.categoryBy(ctx, "c.id = $1", id)
		if err != nil || row != nil {
			return row, err
		}
	}
	return d.categoryBy(ctx, "(c.slug = $1 OR c.name = $1)", value)
}

func (d *CatalogDriver) CategoryByID(ctx context.Context, id int64) (*CategoryRow, error) {
	return d.categoryBy(ctx, "c.id = $1", id)
}

func (d *CatalogDriver) categoryBy(ctx context.Context, cond string, arg any) (*CategoryRow, error) {
	var row CategoryRow
	err := d.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories c WHERE `+cond, arg,
	).Scan(&row.ID, &row.ExternalID, &row.Name, &row.Slug, &row.ParentID, &row.HasChildren)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ChildCategories lists the children of parentID, or root categories when
// parentID is nil.
func (d *CatalogDriver) ChildCategories(ctx context.Context, parentID *int64) ([]CategoryRow, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if parentID == nil {
		rows, err = d.pool.Query(ctx,
			`SELECT `+categoryColumns+` FROM categories c WHERE c.parent_id IS NULL ORDER BY c.name`)
	} else {
		rows, err = d.pool.Query(ctx,
			`SELECT `+categoryColumns+` FROM categories c WHERE c.parent_id = $1 ORDER BY c.name`, *parentID)
	}
	if err != nil {
		return nil, err
	}
	return d.scanCategories(rows)
}

// BrandByIDOrSlug tries a numeric id lookup first, then slug.
// A miss returns (nil, nil).
func (d *CatalogDriver) BrandByIDOrSlug(ctx context.Context, value string) (*BrandRow, error) {
	if id, err := strconv.ParseInt(value, 10, 64); err == nil {
		row, err := d.brandBy(ctx, "id = $1", id)
		if err != nil || row != nil {
			return row, err
		}
	}
	return d.brandBy(ctx, "slug = $1", value)
}

func (d *CatalogDriver) brandBy(ctx context.Context, cond string, arg any) (*BrandRow, error) {
	var row BrandRow
	err := d.pool.QueryRow(ctx,
		`SELECT id, name, slug FROM brands WHERE `+cond, arg,
	).Scan(&row.ID, &row.Name, &row.Slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// BrandsWithAvailableProducts lists brands having at least one available
// product, optionally narrowed to a category id set, capped at limit.
func (d *CatalogDriver) BrandsWithAvailableProducts(ctx context.Context, categoryIDs []int64, limit int) ([]BrandRow, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if len(categoryIDs) == 0 {
		rows, err = d.pool.Query(ctx, `
			SELECT DISTINCT b.id, b.name, b.slug
			FROM brands b
			JOIN products p ON p.brand_id = b.id
			WHERE p.available
			ORDER BY b.name
			LIMIT $1`, limit)
	} else {
		rows, err = d.pool.Query(ctx, `
			SELECT DISTINCT b.id, b.name, b.slug
			FROM brands b
			JOIN products p ON p.brand_id = b.id
			WHERE p.available AND p.category_id = ANY($1)
			ORDER BY b.name
			LIMIT $2`, categoryIDs, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BrandRow
	for rows.Next() {
		var row BrandRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Slug); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ParameterBySlug returns the parameter dimension with the given slug, or
// nil.
func (d *CatalogDriver) ParameterBySlug(ctx context.Context, slug string) (*ParameterRow, error) {
	var row ParameterRow
	err := d.pool.QueryRow(ctx,
		`SELECT id, name, slug FROM parameters WHERE slug = $1`, slug,
	).Scan(&row.ID, &row.Name, &row.Slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ParameterValues lists the distinct (parameter, value) pairs carried by
// available products in the given categories, restricted to the given
// parameter slugs when non-empty.
func (d *CatalogDriver) ParameterValues(ctx context.Context, categoryIDs []int64, slugs []string) ([]ParameterValueRow, error) {
	query := `
		SELECT pa.id, pa.name, pa.slug, pp.value, pp.value_slug
		FROM parameters pa
		JOIN product_parameters pp ON pp.parameter_id = pa.id
		JOIN products p ON p.id = pp.product_id
		WHERE p.available`
	var args []any
	if len(categoryIDs) > 0 {
		args = append(args, categoryIDs)
		query += fmt.Sprintf(` AND p.category_id = ANY($%d)`, len(args))
	}
	if len(slugs) > 0 {
		args = append(args, slugs)
		query += fmt.Sprintf(` AND pa.slug = ANY($%d)`, len(args))
	}
	query += `
		GROUP BY pa.id, pa.name, pa.slug, pp.value, pp.value_slug
		ORDER BY pa.name, pp.value`

	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ParameterValueRow
	for rows.Next() {
		var row ParameterValueRow
		if err := rows.Scan(&row.ParameterID, &row.ParameterName, &row.ParameterSlug, &row.Value, &row.ValueSlug); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ResolveParameterValueSlug maps a selected value, raw or already a slug,
// to the stored value slug.
func (d *CatalogDriver) ResolveParameterValueSlug(ctx context.Context, parameterSlug, value string) (string, bool, error) {
	var slug string
	err := d.pool.QueryRow(ctx, `
		SELECT pp.value_slug
		FROM product_parameters pp
		JOIN parameters pa ON pa.id = pp.parameter_id
		WHERE pa.slug = $1 AND (pp.value = $2 OR pp.value_slug = $2)
		LIMIT 1`, parameterSlug, value,
	).Scan(&slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return slug, true, nil
}

// AvailableProductIDs returns the ids of every available product.
func (d *CatalogDriver) AvailableProductIDs(ctx context.Context) ([]int64, error) {
	rows, err := d.pool.Query(ctx, `SELECT id FROM products WHERE available ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ProductsForIndexing streams available products keyset-paginated by id.
func (d *CatalogDriver) ProductsForIndexing(ctx context.Context, afterID int64, limit int) ([]ProductRow, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT p.id, p.external_id, p.name, p.price, p.stock, p.available, p.currency,
		       b.id, b.name, b.slug, p.category_id
		FROM products p
		JOIN brands b ON b.id = p.brand_id
		WHERE p.available AND p.id > $1
		ORDER BY p.id
		LIMIT $2`, afterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProductRow
	for rows.Next() {
		var row ProductRow
		if err := rows.Scan(
			&row.ID, &row.ExternalID, &row.Name, &row.Price, &row.Stock, &row.Available,
			&row.Currency, &row.BrandID, &row.BrandName, &row.BrandSlug, &row.CategoryID,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ProductAttributes loads the parameter attributes for a batch of product
// ids.
func (d *CatalogDriver) ProductAttributes(ctx context.Context, productIDs []int64) ([]ProductAttributeRow, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	rows, err := d.pool.Query(ctx, `
		SELECT pp.product_id, pa.name, pa.slug, pp.value, pp.value_slug
		FROM product_parameters pp
		JOIN parameters pa ON pa.id = pp.parameter_id
		WHERE pp.product_id = ANY($1)
		ORDER BY pp.product_id`, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProductAttributeRow
	for rows.Next() {
		var row ProductAttributeRow
		if err := rows.Scan(&row.ProductID, &row.ParameterName, &row.ParameterSlug, &row.Value, &row.ValueSlug); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
