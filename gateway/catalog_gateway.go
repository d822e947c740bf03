package gateway

import (
	"context"

	"catalog-engine/domain"
	"catalog-engine/driver"
	"catalog-engine/port"
)

// CatalogGateway adapts the pgx catalog driver to the read-only
// port.CatalogStore the engine consumes.
type CatalogGateway struct {
	driver *driver.CatalogDriver
}

func NewCatalogGateway(d *driver.CatalogDriver) *CatalogGateway {
	return &CatalogGateway{driver: d}
}

func toDomainCategory(row *driver.CategoryRow) *domain.Category {
	if row == nil {
		return nil
	}
	return &domain.Category{
		ID:          row.ID,
		ExternalID:  row.ExternalID,
		Name:        row.Name,
		Slug:        row.Slug,
		ParentID:    row.ParentID,
		HasChildren: row.HasChildren,
	}
}

func toDomainBrand(row *driver.BrandRow) *domain.Brand {
	if row == nil {
		return nil
	}
	return &domain.Brand{ID: row.ID, Name: row.Name, Slug: row.Slug}
}

func (g *CatalogGateway) CategoryByIDOrSlug(ctx context.Context, value string) (*domain.Category, error) {
	row, err := g.driver.CategoryByIDOrSlug(ctx, value)
	if err != nil {
		return nil, &port.RepositoryError{Op: "CategoryByIDOrSlug", Err: err.Error()}
	}
	return toDomainCategory(row), nil
}

func (g *CatalogGateway) CategoryByID(ctx context.Context, id int64) (*domain.Category, error) {
	row, err := g.driver.CategoryByID(ctx, id)
	if err != nil {
		return nil, &port.RepositoryError{Op: "CategoryByID", Err: err.Error()}
	}
	return toDomainCategory(row), nil
}

func (g *CatalogGateway) ChildCategories(ctx context.Context, parentID *int64) ([]domain.Category, error) {
	rows, err := g.driver.ChildCategories(ctx, parentID)
	if err != nil {
		return nil, &port.RepositoryError{Op: "ChildCategories", Err: err.Error()}
	}
	out := make([]domain.Category, 0, len(rows))
	for i := range rows {
		out = append(out, *toDomainCategory(&rows[i]))
	}
	return out, nil
}

func (g *CatalogGateway) CategoriesBySlugOrID(ctx context.Context, values []string) ([]domain.Category, error) {
	out := make([]domain.Category, 0, len(values))
	seen := make(map[int64]struct{}, len(values))
	for _, value := range values {
		category, err := g.CategoryByIDOrSlug(ctx, value)
		if err != nil {
			return nil, err
		}
		if category == nil {
			continue
		}
		if _, dup := seen[category.ID]; dup {
			continue
		}
		seen[category.ID] = struct{}{}
		out = append(out, *category)
	}
	return out, nil
}

func (g *CatalogGateway) BrandByIDOrSlug(ctx context.Context, value string) (*domain.Brand, error) {
	row, err := g.driver.BrandByIDOrSlug(ctx, value)
	if err != nil {
		return nil, &port.RepositoryError{Op: "BrandByIDOrSlug", Err: err.Error()}
	}
	return toDomainBrand(row), nil
}

func (g *CatalogGateway) BrandsWithAvailableProducts(ctx context.Context, categoryIDs []int64, limit int) ([]domain.Brand, error) {
	rows, err := g.driver.BrandsWithAvailableProducts(ctx, categoryIDs, limit)
	if err != nil {
		return nil, &port.RepositoryError{Op: "BrandsWithAvailableProducts", Err: err.Error()}
	}
	out := make([]domain.Brand, 0, len(rows))
	for i := range rows {
		out = append(out, *toDomainBrand(&rows[i]))
	}
	return out, nil
}

func (g *CatalogGateway) ParameterBySlug(ctx context.Context, slug string) (*domain.Parameter, error) {
	row, err := g.driver.ParameterBySlug(ctx, slug)
	if err != nil {
		return nil, &port.RepositoryError{Op: "ParameterBySlug", Err: err.Error()}
	}
	if row == nil {
		return nil, nil
	}
	return &domain.Parameter{ID: row.ID, Name: row.Name, Slug: row.Slug}, nil
}

// ParametersWithValues groups pivot rows per parameter, preserving the
// driver's name/value ordering and dropping duplicate value slugs.
func (g *CatalogGateway) ParametersWithValues(ctx context.Context, categoryIDs []int64, slugs []string) ([]port.ParameterWithValues, error) {
	rows, err := g.driver.ParameterValues(ctx, categoryIDs, slugs)
	if err != nil {
		return nil, &port.RepositoryError{Op: "ParametersWithValues", Err: err.Error()}
	}

	var (
		out   []port.ParameterWithValues
		index = make(map[string]int)
		seen  = make(map[string]struct{})
	)
	for _, row := range rows {
		i, ok := index[row.ParameterSlug]
		if !ok {
			i = len(out)
			index[row.ParameterSlug] = i
			out = append(out, port.ParameterWithValues{
				Parameter: domain.Parameter{ID: row.ParameterID, Name: row.ParameterName, Slug: row.ParameterSlug},
			})
		}
		dedupeKey := row.ParameterSlug + ":" + row.ValueSlug
		if _, dup := seen[dedupeKey]; dup {
			continue
		}
		seen[dedupeKey] = struct{}{}
		out[i].Values = append(out[i].Values, domain.ParameterValue{
			Value:     row.Value,
			ValueSlug: row.ValueSlug,
		})
	}
	return out, nil
}

func (g *CatalogGateway) ResolveParameterValueSlug(ctx context.Context, parameterSlug, value string) (string, bool, error) {
	slug, ok, err := g.driver.ResolveParameterValueSlug(ctx, parameterSlug, value)
	if err != nil {
		return "", false, &port.RepositoryError{Op: "ResolveParameterValueSlug", Err: err.Error()}
	}
	return slug, ok, nil
}

func (g *CatalogGateway) AvailableProductIDs(ctx context.Context) ([]int64, error) {
	ids, err := g.driver.AvailableProductIDs(ctx)
	if err != nil {
		return nil, &port.RepositoryError{Op: "AvailableProductIDs", Err: err.Error()}
	}
	return ids, nil
}

// ProductsForIndexing loads one batch of products and attaches their
// parameter attributes.
func (g *CatalogGateway) ProductsForIndexing(ctx context.Context, afterID int64, limit int) ([]domain.Product, error) {
	rows, err := g.driver.ProductsForIndexing(ctx, afterID, limit)
	if err != nil {
		return nil, &port.RepositoryError{Op: "ProductsForIndexing", Err: err.Error()}
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(rows))
	products := make([]domain.Product, len(rows))
	index := make(map[int64]int, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
		index[row.ID] = i
		products[i] = domain.Product{
			ID:         row.ID,
			ExternalID: row.ExternalID,
			Name:       row.Name,
			Price:      row.Price,
			Stock:      row.Stock,
			Available:  row.Available,
			Currency:   row.Currency,
			BrandID:    row.BrandID,
			BrandName:  row.BrandName,
			BrandSlug:  row.BrandSlug,
			CategoryID: row.CategoryID,
		}
	}

	attrs, err := g.driver.ProductAttributes(ctx, ids)
	if err != nil {
		return nil, &port.RepositoryError{Op: "ProductsForIndexing", Err: err.Error()}
	}
	for _, attr := range attrs {
		i, ok := index[attr.ProductID]
		if !ok {
			continue
		}
		products[i].Attributes = append(products[i].Attributes, domain.ProductAttribute{
			ParameterSlug: attr.ParameterSlug,
			ParameterName: attr.ParameterName,
			RawValue:      attr.Value,
			Value:         attr.Value,
			ValueSlug:     attr.ValueSlug,
		})
	}
	return products, nil
}
