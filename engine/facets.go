package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"catalog-engine/domain"
)

// ListFacets builds the facet groups for the filtering UI under the
// current selection. Category and brand groups are always present;
// parameter groups are computed only once the user has narrowed into a
// non-root category or selected a parameter, since facet values across
// the whole unfiltered catalog are slow and useless.
//
// requested names one parameter dimension to expand, or
// domain.AllDimensions for every dimension relevant to the narrowing.
// Values counting zero are dropped, except values currently selected,
// which stay visible so the user can always deselect them.
func (e *Engine) ListFacets(ctx context.Context, requested string, filters domain.FilterSelection) ([]domain.FacetGroup, error) {
	qc := NewQueryCache()

	selected, err := e.selectedCategories(ctx, filters)
	if err != nil {
		return nil, err
	}
	scope, err := e.categoryScope(ctx, selected)
	if err != nil {
		return nil, err
	}

	groups := make([]domain.FacetGroup, 0, 4)

	categoryGroup, err := e.categoryGroup(ctx, selected, filters, qc)
	if err != nil {
		return nil, err
	}
	groups = append(groups, categoryGroup)

	brandGroup, err := e.brandGroup(ctx, scope, filters, qc)
	if err != nil {
		return nil, err
	}
	groups = append(groups, brandGroup)

	if e.parametersRelevant(selected, filters) {
		parameterGroups, err := e.parameterGroups(ctx, requested, scope, filters, qc)
		if err != nil {
			return nil, err
		}
		groups = append(groups, parameterGroups...)
	}

	return groups, nil
}

func (e *Engine) selectedCategories(ctx context.Context, filters domain.FilterSelection) ([]domain.Category, error) {
	if !filters.Has(domain.DimensionCategory) {
		return nil, nil
	}
	return e.catalog.CategoriesBySlugOrID(ctx, filters[domain.DimensionCategory])
}

// categoryScope is the descendant-inclusive id set of the selected
// categories, used to narrow the brand and parameter groups. Empty when
// no category is selected.
func (e *Engine) categoryScope(ctx context.Context, selected []domain.Category) ([]int64, error) {
	if len(selected) == 0 {
		return nil, nil
	}
	seen := make(map[int64]struct{})
	var scope []int64
	for _, category := range selected {
		ids, err := e.hierarchy.DescendantsOf(ctx, category.ID)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			scope = append(scope, id)
		}
	}
	return scope, nil
}

// categoryGroup lists top-level categories, or the children of the
// selected ones so the UI can drill down a level at a time.
func (e *Engine) categoryGroup(ctx context.Context, selected []domain.Category, filters domain.FilterSelection, qc *QueryCache) (domain.FacetGroup, error) {
	group := domain.FacetGroup{Dimension: domain.DimensionCategory, Name: "Category"}

	// selected already resolved the raw filter values (id, slug or
	// display name), so active is an id comparison rather than another
	// round of value matching.
	selectedIDs := make(map[int64]struct{}, len(selected))
	for _, category := range selected {
		selectedIDs[category.ID] = struct{}{}
	}

	var candidates []domain.Category
	if len(selected) == 0 {
		roots, err := e.catalog.ChildCategories(ctx, nil)
		if err != nil {
			return group, err
		}
		candidates = roots
	} else {
		for _, category := range selected {
			children, err := e.catalog.ChildCategories(ctx, &category.ID)
			if err != nil {
				return group, err
			}
			candidates = append(candidates, children...)
		}
		// The selected categories themselves stay listed so the user
		// can see and deselect the current narrowing.
		candidates = append(candidates, selected...)
	}

	values, err := countValues(ctx, e.cfg.CountConcurrency, candidates, func(category domain.Category) (string, string, bool) {
		_, active := selectedIDs[category.ID]
		return category.Name, category.Slug, active
	}, func(ctx context.Context, category domain.Category) (int64, error) {
		return e.CountIfSelected(ctx, domain.DimensionCategory, category.Slug, filters, qc)
	}, func(category domain.Category) bool {
		return category.HasChildren
	})
	if err != nil {
		return group, err
	}

	group.Values = values
	return group, nil
}

func (e *Engine) brandGroup(ctx context.Context, scope []int64, filters domain.FilterSelection, qc *QueryCache) (domain.FacetGroup, error) {
	group := domain.FacetGroup{Dimension: domain.DimensionBrand, Name: "Brand"}

	brands, err := e.catalog.BrandsWithAvailableProducts(ctx, scope, e.cfg.BrandListLimit)
	if err != nil {
		return group, err
	}

	values, err := countValues(ctx, e.cfg.CountConcurrency, brands, func(brand domain.Brand) (string, string, bool) {
		active := filters.Contains(domain.DimensionBrand, brand.Slug) ||
			filters.Contains(domain.DimensionBrand, brand.Name)
		return brand.Name, brand.Slug, active
	}, func(ctx context.Context, brand domain.Brand) (int64, error) {
		return e.CountIfSelected(ctx, domain.DimensionBrand, brand.Slug, filters, qc)
	}, nil)
	if err != nil {
		return group, err
	}

	group.Values = values
	return group, nil
}

// parametersRelevant gates the parameter groups: at least one selected
// non-root category, or a parameter filter already applied.
func (e *Engine) parametersRelevant(selected []domain.Category, filters domain.FilterSelection) bool {
	for i := range selected {
		if !selected[i].IsRoot() {
			return true
		}
	}
	return len(filters.ParameterDimensions()) > 0
}

func (e *Engine) parameterGroups(ctx context.Context, requested string, scope []int64, filters domain.FilterSelection, qc *QueryCache) ([]domain.FacetGroup, error) {
	// Unless every dimension was requested, compute only the ones
	// relevant to the narrowing: already-selected parameters plus the
	// requested one.
	var slugs []string
	if requested != domain.AllDimensions {
		slugs = filters.ParameterDimensions()
		if requested != "" && requested != domain.DimensionCategory && requested != domain.DimensionBrand {
			found := false
			for _, slug := range slugs {
				if slug == requested {
					found = true
					break
				}
			}
			if !found {
				slugs = append(slugs, requested)
			}
		}
		if len(slugs) == 0 {
			return nil, nil
		}
	}

	parameters, err := e.catalog.ParametersWithValues(ctx, scope, slugs)
	if err != nil {
		return nil, err
	}

	groups := make([]domain.FacetGroup, 0, len(parameters))
	for _, parameter := range parameters {
		dim := parameter.Parameter.Slug
		values, err := countValues(ctx, e.cfg.CountConcurrency, parameter.Values, func(v domain.ParameterValue) (string, string, bool) {
			return v.Value, v.ValueSlug, filters.Contains(dim, v.ValueSlug) || filters.Contains(dim, v.Value)
		}, func(ctx context.Context, v domain.ParameterValue) (int64, error) {
			return e.CountIfSelected(ctx, dim, v.ValueSlug, filters, qc)
		}, nil)
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			continue
		}
		groups = append(groups, domain.FacetGroup{
			Dimension: dim,
			Name:      parameter.Parameter.Name,
			Values:    values,
		})
	}
	return groups, nil
}

// countValues computes counts for a slice of candidates concurrently and
// shapes them into facet values, dropping zero counts unless active.
// Methods cannot be generic, hence the free function.
func countValues[T any](ctx context.Context, concurrency int, candidates []T, describe func(T) (value, slug string, active bool), count func(context.Context, T) (int64, error), hasChildren func(T) bool) ([]domain.FacetValue, error) {
	counts := make([]int64, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range candidates {
		g.Go(func() error {
			n, err := count(gctx, candidates[i])
			if err != nil {
				return err
			}
			counts[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	values := make([]domain.FacetValue, 0, len(candidates))
	for i, candidate := range candidates {
		value, slug, active := describe(candidate)
		if counts[i] == 0 && !active {
			continue
		}
		facetValue := domain.FacetValue{
			Value:     value,
			ValueSlug: slug,
			Count:     counts[i],
			Active:    active,
		}
		if hasChildren != nil {
			facetValue.HasChildren = hasChildren(candidate)
		}
		values = append(values, facetValue)
	}
	return values, nil
}
