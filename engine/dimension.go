package engine

import (
	"context"

	"catalog-engine/domain"
)

type dimensionKind int

const (
	kindCategory dimensionKind = iota
	kindBrand
	kindParameter
)

// dimension is a filter axis resolved once per selection. The kind decides
// how a selected value maps onto facet set keys: categories expand to
// their whole descendant subtree, brands and parameters map to a single
// key each.
type dimension struct {
	kind dimensionKind
	slug string
}

func (e *Engine) dimensionFor(name string) dimension {
	switch name {
	case domain.DimensionCategory:
		return dimension{kind: kindCategory, slug: name}
	case domain.DimensionBrand:
		return dimension{kind: kindBrand, slug: name}
	default:
		return dimension{kind: kindParameter, slug: name}
	}
}

// resolveKeys maps one selected value to the facet set keys it stands
// for. A value that resolves to nothing returns no keys: missing keys are
// empty sets, so it contributes no members downstream.
func (e *Engine) resolveKeys(ctx context.Context, dim dimension, value string) ([]string, error) {
	switch dim.kind {
	case kindCategory:
		return e.categoryKeys(ctx, value)
	case kindBrand:
		return e.brandKeys(ctx, value)
	default:
		return e.parameterKeys(ctx, dim.slug, value)
	}
}

func (e *Engine) categoryKeys(ctx context.Context, value string) ([]string, error) {
	category, err := e.hierarchy.Resolve(ctx, value)
	if err != nil {
		return nil, err
	}
	if category == nil {
		e.log.Warn("unresolved category filter value", "value", value)
		return nil, nil
	}
	ids, err := e.hierarchy.DescendantsOf(ctx, category.ID)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, domain.FacetKeyCategory(id))
	}
	return keys, nil
}

func (e *Engine) brandKeys(ctx context.Context, value string) ([]string, error) {
	brand, err := e.catalog.BrandByIDOrSlug(ctx, value)
	if err != nil {
		return nil, err
	}
	if brand != nil {
		return []string{domain.FacetKey(domain.DimensionBrand, brand.Slug)}, nil
	}
	// Display names are accepted too; if the derived slug names no live
	// set the key is simply empty.
	return []string{domain.FacetKey(domain.DimensionBrand, domain.Slug(value))}, nil
}

func (e *Engine) parameterKeys(ctx context.Context, parameterSlug, value string) ([]string, error) {
	valueSlug, ok, err := e.catalog.ResolveParameterValueSlug(ctx, parameterSlug, value)
	if err != nil {
		return nil, err
	}
	if !ok {
		e.log.Warn("unresolved parameter filter value",
			"parameter", parameterSlug,
			"value", value,
		)
		valueSlug = domain.Slug(value)
	}
	return []string{domain.FacetKey(parameterSlug, valueSlug)}, nil
}
