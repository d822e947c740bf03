package domain

// ProductAttribute is one (parameter dimension, value) pair attached to a
// product. RawValue is the value as imported; Value is the canonical
// display form; ValueSlug is the slug of the raw value and is what facet
// sets are keyed by.
type ProductAttribute struct {
	ParameterSlug string
	ParameterName string
	RawValue      string
	Value         string
	ValueSlug     string
}

// Product is a catalog record. The catalog store owns products; the engine
// reads them during indexing and never mutates them. Only available
// products are indexed into facet sets; unavailable ones stay in the
// catalog but carry no facet membership.
type Product struct {
	ID         int64
	ExternalID string
	Name       string
	Price      float64
	Stock      int
	Available  bool
	Currency   string
	BrandID    int64
	BrandSlug  string
	BrandName  string
	CategoryID int64
	Attributes []ProductAttribute
	Pictures   []string
}

// ImportCategory is a normalized category record from the bulk import
// collaborator, before it is persisted into the catalog store.
type ImportCategory struct {
	ExternalID string
	Name       string
	ParentID   string
}

// ImportParameter is one raw parameter attribute on an import record.
type ImportParameter struct {
	Name     string
	RawValue string
}

// ImportProduct is a normalized product record from the bulk import
// collaborator.
type ImportProduct struct {
	ExternalID         string
	Available          bool
	CategoryExternalID string
	Name               string
	Price              float64
	Stock              int
	Currency           string
	Vendor             string
	VendorCode         string
	Barcode            string
	Description        string
	Parameters         []ImportParameter
	Pictures           []string
}
