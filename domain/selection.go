package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Built-in dimension names. Every other dimension is a dynamic parameter
// identified by its slug.
const (
	DimensionCategory = "category"
	DimensionBrand    = "brand"
)

// AllDimensions is the sentinel a caller passes to request facet values
// for every dimension relevant to the current narrowing.
const AllDimensions = "all"

// FilterSelection maps a dimension name to the values selected in it.
// Values may be value slugs or raw display values; the engine resolves
// both. A dimension with no values is not a constraint.
type FilterSelection map[string][]string

// Has reports whether the dimension carries at least one selected value.
func (s FilterSelection) Has(dimension string) bool {
	return len(s[dimension]) > 0
}

// Contains reports whether the given value is selected in the dimension,
// matching either the raw value or its slug.
func (s FilterSelection) Contains(dimension, value string) bool {
	slug := Slug(value)
	for _, v := range s[dimension] {
		if v == value || Slug(v) == slug {
			return true
		}
	}
	return false
}

// Without returns a copy of the selection with the given dimensions
// removed. Used to strip a dimension's own constraints before computing
// its facet counts.
func (s FilterSelection) Without(dimensions ...string) FilterSelection {
	out := make(FilterSelection, len(s))
	for dim, values := range s {
		out[dim] = values
	}
	for _, dim := range dimensions {
		delete(out, dim)
	}
	return out
}

// ParameterDimensions returns the selected dimension names that are
// neither category nor brand, sorted for deterministic iteration.
func (s FilterSelection) ParameterDimensions() []string {
	var dims []string
	for dim := range s {
		if dim != DimensionCategory && dim != DimensionBrand {
			dims = append(dims, dim)
		}
	}
	sort.Strings(dims)
	return dims
}

// Fingerprint returns a canonical textual form of the selection, suitable
// as a cache key component. Dimensions and values are sorted so that two
// equal selections always produce the same fingerprint.
func (s FilterSelection) Fingerprint() string {
	dims := make([]string, 0, len(s))
	for dim, values := range s {
		if len(values) > 0 {
			dims = append(dims, dim)
		}
	}
	sort.Strings(dims)

	var b strings.Builder
	for _, dim := range dims {
		values := append([]string(nil), s[dim]...)
		sort.Strings(values)
		b.WriteString(dim)
		b.WriteByte('=')
		b.WriteString(strings.Join(values, ","))
		b.WriteByte(';')
	}
	return b.String()
}

const (
	maxDimensions      = 20
	maxValuesPerFilter = 30
	maxValueLength     = 120
)

var validDimensionRegex = regexp.MustCompile(`^[a-z0-9_]+$`)

// ValidateSelection rejects malformed filter input at the boundary before
// it reaches the engine. Dimension names must be lowercase slugs; values
// must be non-empty, bounded, and free of control characters.
func ValidateSelection(s FilterSelection) error {
	if len(s) > maxDimensions {
		return fmt.Errorf("too many filter dimensions: maximum %d, got %d", maxDimensions, len(s))
	}

	for dim, values := range s {
		if !validDimensionRegex.MatchString(dim) {
			return fmt.Errorf("invalid filter dimension: %q", dim)
		}
		if len(values) > maxValuesPerFilter {
			return fmt.Errorf("too many values for %q: maximum %d, got %d", dim, maxValuesPerFilter, len(values))
		}
		for _, value := range values {
			if strings.TrimSpace(value) == "" {
				return fmt.Errorf("empty value for filter %q", dim)
			}
			if len(value) > maxValueLength {
				return fmt.Errorf("value too long for %q: maximum %d characters", dim, maxValueLength)
			}
			for _, r := range value {
				if unicode.IsControl(r) {
					return fmt.Errorf("control characters not allowed in filter %q", dim)
				}
			}
		}
	}

	return nil
}
