package domain

import "strconv"

// FacetValue is one selectable value inside a facet group, annotated with
// the number of products that would match if it were additionally
// selected.
type FacetValue struct {
	Value       string `json:"value"`
	ValueSlug   string `json:"value_slug"`
	Count       int64  `json:"count"`
	Active      bool   `json:"active"`
	HasChildren bool   `json:"has_children,omitempty"`
}

// FacetGroup is the list of values for one dimension, as exposed to the
// filtering UI.
type FacetGroup struct {
	Dimension string       `json:"slug"`
	Name      string       `json:"name"`
	Values    []FacetValue `json:"values"`
}

// SetKey layout for the facet index. Facet sets hold product ids; the
// known-values registries enumerate which value sets exist per dimension
// so the engine never scans the store to discover them.
const (
	FacetKeyPrefix       = "facet:"
	KnownValuesKeyPrefix = "knownValues:"
)

// FacetKey returns the set key holding product ids for one
// (dimension, value slug) pair. Category sets are keyed by category id.
func FacetKey(dimension, valueSlug string) string {
	return FacetKeyPrefix + dimension + ":" + valueSlug
}

// FacetKeyCategory returns the category facet set key. Category sets are
// keyed by internal category id, not slug.
func FacetKeyCategory(categoryID int64) string {
	return FacetKeyPrefix + DimensionCategory + ":" + strconv.FormatInt(categoryID, 10)
}

// KnownValuesKey returns the registry key enumerating value slugs for a
// dimension.
func KnownValuesKey(dimension string) string {
	return KnownValuesKeyPrefix + dimension
}
