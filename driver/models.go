package driver

// CategoryRow is a categories table row with the has_children aggregate.
type CategoryRow struct {
	ID          int64
	ExternalID  string
	Name        string
	Slug        string
	ParentID    *int64
	HasChildren bool
}

// BrandRow is a brands table row.
type BrandRow struct {
	ID   int64
	Name string
	Slug string
}

// ParameterRow is a parameters table row.
type ParameterRow struct {
	ID   int64
	Name string
	Slug string
}

// ParameterValueRow is one distinct (parameter, value) pair drawn from
// the product_parameters pivot.
type ParameterValueRow struct {
	ParameterID   int64
	ParameterName string
	ParameterSlug string
	Value         string
	ValueSlug     string
}

// ProductRow is a products table row joined with its brand.
type ProductRow struct {
	ID         int64
	ExternalID string
	Name       string
	Price      float64
	Stock      int
	Available  bool
	Currency   string
	BrandID    int64
	BrandName  string
	BrandSlug  string
	CategoryID int64
}

// ProductAttributeRow is a product_parameters pivot row joined with its
// parameter.
type ProductAttributeRow struct {
	ProductID     int64
	ParameterName string
	ParameterSlug string
	Value         string
	ValueSlug     string
}
