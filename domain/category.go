package domain

// Category is one node of the catalog's category forest. ParentID is nil
// for root categories. The forest is owned by the read-only catalog store;
// the engine only traverses it.
type Category struct {
	ID          int64
	ExternalID  string
	Name        string
	Slug        string
	ParentID    *int64
	HasChildren bool
}

// IsRoot reports whether the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// Brand is a product vendor. Brands are keyed in facet sets by slug.
type Brand struct {
	ID   int64
	Name string
	Slug string
}

// Parameter is one dynamic filter dimension (e.g. "Color", "Material"),
// identified by a stable slug derived from its display name.
type Parameter struct {
	ID   int64
	Name string
	Slug string
}

// ParameterValue is one distinct (display value, value slug) pair observed
// on products for a parameter dimension.
type ParameterValue struct {
	Value     string
	ValueSlug string
}
