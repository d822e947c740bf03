package gateway

import (
	"context"

	"catalog-engine/domain"
	"catalog-engine/driver"
	"catalog-engine/port"
)

// WriterGateway adapts the pgx writer driver to port.CatalogWriter for
// the bulk import job.
type WriterGateway struct {
	driver *driver.CatalogWriterDriver
}

func NewWriterGateway(d *driver.CatalogWriterDriver) *WriterGateway {
	return &WriterGateway{driver: d}
}

func (g *WriterGateway) UpsertCategory(ctx context.Context, externalID, name, slug string) (int64, error) {
	id, err := g.driver.UpsertCategory(ctx, externalID, name, slug)
	if err != nil {
		return 0, &port.RepositoryError{Op: "UpsertCategory", Err: err.Error()}
	}
	return id, nil
}

func (g *WriterGateway) SetCategoryParent(ctx context.Context, externalID, parentExternalID string) error {
	if err := g.driver.SetCategoryParent(ctx, externalID, parentExternalID); err != nil {
		return &port.RepositoryError{Op: "SetCategoryParent", Err: err.Error()}
	}
	return nil
}

func (g *WriterGateway) BrandSlugExists(ctx context.Context, slug string) (bool, error) {
	exists, err := g.driver.BrandSlugExists(ctx, slug)
	if err != nil {
		return false, &port.RepositoryError{Op: "BrandSlugExists", Err: err.Error()}
	}
	return exists, nil
}

func (g *WriterGateway) UpsertBrand(ctx context.Context, name, slug string) (int64, error) {
	id, err := g.driver.UpsertBrand(ctx, name, slug)
	if err != nil {
		return 0, &port.RepositoryError{Op: "UpsertBrand", Err: err.Error()}
	}
	return id, nil
}

func (g *WriterGateway) CategoryIDByExternalID(ctx context.Context, externalID string) (int64, bool, error) {
	id, ok, err := g.driver.CategoryIDByExternalID(ctx, externalID)
	if err != nil {
		return 0, false, &port.RepositoryError{Op: "CategoryIDByExternalID", Err: err.Error()}
	}
	return id, ok, nil
}

func (g *WriterGateway) UpsertProduct(ctx context.Context, p domain.ImportProduct, brandID, categoryID int64) (int64, error) {
	id, err := g.driver.UpsertProduct(ctx, p, brandID, categoryID)
	if err != nil {
		return 0, &port.RepositoryError{Op: "UpsertProduct", Err: err.Error()}
	}
	return id, nil
}

func (g *WriterGateway) ReplaceProductAttributes(ctx context.Context, productID int64, attrs []domain.ProductAttribute) error {
	if err := g.driver.ReplaceProductAttributes(ctx, productID, attrs); err != nil {
		return &port.RepositoryError{Op: "ReplaceProductAttributes", Err: err.Error()}
	}
	return nil
}

func (g *WriterGateway) ReplaceProductPictures(ctx context.Context, productID int64, urls []string) error {
	if err := g.driver.ReplaceProductPictures(ctx, productID, urls); err != nil {
		return &port.RepositoryError{Op: "ReplaceProductPictures", Err: err.Error()}
	}
	return nil
}
