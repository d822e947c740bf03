package port

import (
	"context"

	"catalog-engine/domain"
)

// ParameterWithValues is a parameter dimension together with the distinct
// values observed on available products inside a category scope.
type ParameterWithValues struct {
	Parameter domain.Parameter
	Values    []domain.ParameterValue
}

// CatalogStore is the read-only view of the external product catalog the
// engine queries. Lookup misses return nil (or ok=false), not errors.
type CatalogStore interface {
	// CategoryByIDOrSlug resolves a category by numeric id first, then by
	// slug or display name. Returns nil when nothing matches.
	CategoryByIDOrSlug(ctx context.Context, value string) (*domain.Category, error)

	// CategoryByID returns the category with the given id, or nil.
	CategoryByID(ctx context.Context, id int64) (*domain.Category, error)

	// ChildCategories returns the children of parentID, or the root
	// categories when parentID is nil.
	ChildCategories(ctx context.Context, parentID *int64) ([]domain.Category, error)

	// CategoriesBySlugOrID resolves each value like CategoryByIDOrSlug
	// and returns the categories that were found.
	CategoriesBySlugOrID(ctx context.Context, values []string) ([]domain.Category, error)

	// BrandByIDOrSlug resolves a brand by numeric id first, then by slug.
	// Returns nil when neither matches.
	BrandByIDOrSlug(ctx context.Context, value string) (*domain.Brand, error)

	// BrandsWithAvailableProducts lists brands having at least one
	// available product, narrowed to the given category ids when
	// non-empty, capped at limit.
	BrandsWithAvailableProducts(ctx context.Context, categoryIDs []int64, limit int) ([]domain.Brand, error)

	// ParameterBySlug returns the parameter dimension with the given
	// slug, or nil.
	ParameterBySlug(ctx context.Context, slug string) (*domain.Parameter, error)

	// ParametersWithValues lists parameter dimensions carried by
	// available products, narrowed to the given categories and parameter
	// slugs when those are non-empty, each with its distinct observed
	// values.
	ParametersWithValues(ctx context.Context, categoryIDs []int64, slugs []string) ([]ParameterWithValues, error)

	// ResolveParameterValueSlug maps a selected value, which may be a
	// display value or already a slug, to the stored value slug.
	ResolveParameterValueSlug(ctx context.Context, parameterSlug, value string) (string, bool, error)

	// AvailableProductIDs returns the ids of all available products.
	AvailableProductIDs(ctx context.Context) ([]int64, error)

	// ProductsForIndexing streams available products with brand and
	// parameter attributes, keyset-paginated by product id.
	ProductsForIndexing(ctx context.Context, afterID int64, limit int) ([]domain.Product, error)
}

// ProductLister is the external pagination and sorting collaborator. It
// shapes the final page of product records for a matching id set.
type ProductLister interface {
	List(ctx context.Context, ids []int64, sortField, order string, limit, page int) ([]domain.Product, int64, error)
}

// CatalogWriter is the persistence side used by the bulk import job. The
// engine itself never writes to the catalog.
type CatalogWriter interface {
	UpsertCategory(ctx context.Context, externalID, name, slug string) (int64, error)
	SetCategoryParent(ctx context.Context, externalID, parentExternalID string) error
	BrandSlugExists(ctx context.Context, slug string) (bool, error)
	UpsertBrand(ctx context.Context, name, slug string) (int64, error)
	CategoryIDByExternalID(ctx context.Context, externalID string) (int64, bool, error)
	UpsertProduct(ctx context.Context, p domain.ImportProduct, brandID, categoryID int64) (int64, error)
	ReplaceProductAttributes(ctx context.Context, productID int64, attrs []domain.ProductAttribute) error
	ReplaceProductPictures(ctx context.Context, productID int64, urls []string) error
}

// RepositoryError represents an error crossing a repository port.
type RepositoryError struct {
	Op  string
	Err string
}

func (e *RepositoryError) Error() string {
	return e.Op + ": " + e.Err
}
