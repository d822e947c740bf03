package driver

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"catalog-engine/domain"
)

// CatalogWriterDriver runs the write-side statements used by the bulk
// import job. Upserts are keyed on the stable external identifiers so
// repeating an import is safe.
type CatalogWriterDriver struct {
	pool Querier
}

func NewCatalogWriterDriver(pool Querier) *CatalogWriterDriver {
	return &CatalogWriterDriver{pool: pool}
}

func (d *CatalogWriterDriver) UpsertCategory(ctx context.Context, externalID, name, slug string) (int64, error) {
	var id int64
	err := d.pool.QueryRow(ctx, `
		INSERT INTO categories (external_id, name, slug)
		VALUES ($1, $2, $3)
		ON CONFLICT (external_id) DO UPDATE SET name = EXCLUDED.name, slug = EXCLUDED.slug
		RETURNING id`, externalID, name, slug,
	).Scan(&id)
	return id, err
}

func (d *CatalogWriterDriver) SetCategoryParent(ctx context.Context, externalID, parentExternalID string) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE categories
		SET parent_id = (SELECT id FROM categories WHERE external_id = $2)
		WHERE external_id = $1`, externalID, parentExternalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("category not found: " + externalID)
	}
	return nil
}

func (d *CatalogWriterDriver) BrandSlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := d.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM brands WHERE slug = $1)`, slug,
	).Scan(&exists)
	return exists, err
}

func (d *CatalogWriterDriver) UpsertBrand(ctx context.Context, name, slug string) (int64, error) {
	var id int64
	err := d.pool.QueryRow(ctx, `
		INSERT INTO brands (name, slug)
		VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`, name, slug,
	).Scan(&id)
	return id, err
}

func (d *CatalogWriterDriver) CategoryIDByExternalID(ctx context.Context, externalID string) (int64, bool, error) {
	var id int64
	err := d.pool.QueryRow(ctx,
		`SELECT id FROM categories WHERE external_id = $1`, externalID,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (d *CatalogWriterDriver) UpsertProduct(ctx context.Context, p domain.ImportProduct, brandID, categoryID int64) (int64, error) {
	var id int64
	err := d.pool.QueryRow(ctx, `
		INSERT INTO products
			(external_id, name, price, stock, description, vendor_code, barcode,
			 available, currency, brand_id, category_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10, $11)
		ON CONFLICT (external_id) DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			stock = EXCLUDED.stock,
			description = EXCLUDED.description,
			vendor_code = EXCLUDED.vendor_code,
			barcode = EXCLUDED.barcode,
			available = EXCLUDED.available,
			currency = EXCLUDED.currency,
			brand_id = EXCLUDED.brand_id,
			category_id = EXCLUDED.category_id
		RETURNING id`,
		p.ExternalID, p.Name, p.Price, p.Stock, p.Description, p.VendorCode, p.Barcode,
		p.Available, p.Currency, brandID, categoryID,
	).Scan(&id)
	return id, err
}

func (d *CatalogWriterDriver) ReplaceProductAttributes(ctx context.Context, productID int64, attrs []domain.ProductAttribute) error {
	if _, err := d.pool.Exec(ctx,
		`DELETE FROM product_parameters WHERE product_id = $1`, productID); err != nil {
		return err
	}

	for _, attr := range attrs {
		var parameterID int64
		err := d.pool.QueryRow(ctx, `
			INSERT INTO parameters (name, slug)
			VALUES ($1, $2)
			ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`, attr.ParameterName, attr.ParameterSlug,
		).Scan(&parameterID)
		if err != nil {
			return err
		}

		if _, err := d.pool.Exec(ctx, `
			INSERT INTO product_parameters (product_id, parameter_id, value, value_slug)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (product_id, parameter_id) DO UPDATE SET
				value = EXCLUDED.value,
				value_slug = EXCLUDED.value_slug`,
			productID, parameterID, attr.Value, attr.ValueSlug); err != nil {
			return err
		}
	}
	return nil
}

func (d *CatalogWriterDriver) ReplaceProductPictures(ctx context.Context, productID int64, urls []string) error {
	if _, err := d.pool.Exec(ctx,
		`DELETE FROM product_images WHERE product_id = $1`, productID); err != nil {
		return err
	}
	for _, url := range urls {
		if _, err := d.pool.Exec(ctx,
			`INSERT INTO product_images (product_id, url) VALUES ($1, $2)`,
			productID, url); err != nil {
			return err
		}
	}
	return nil
}
