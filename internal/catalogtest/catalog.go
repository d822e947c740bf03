// Package catalogtest provides an in-memory port.CatalogStore used by
// engine, indexer and hierarchy tests.
package catalogtest

import (
	"context"
	"sort"
	"strconv"

	"catalog-engine/domain"
	"catalog-engine/port"
)

// Catalog is an in-memory catalog store seeded directly with domain
// entities.
type Catalog struct {
	Categories []domain.Category
	Brands     []domain.Brand
	Parameters []domain.Parameter
	Products   []domain.Product
}

var _ port.CatalogStore = (*Catalog)(nil)

func (c *Catalog) CategoryByIDOrSlug(_ context.Context, value string) (*domain.Category, error) {
	if id, err := strconv.ParseInt(value, 10, 64); err == nil {
		for i := range c.Categories {
			if c.Categories[i].ID == id {
				cat := c.Categories[i]
				return &cat, nil
			}
		}
	}
	for i := range c.Categories {
		if c.Categories[i].Slug == value || c.Categories[i].Name == value {
			cat := c.Categories[i]
			return &cat, nil
		}
	}
	return nil, nil
}

func (c *Catalog) CategoryByID(_ context.Context, id int64) (*domain.Category, error) {
	for i := range c.Categories {
		if c.Categories[i].ID == id {
			cat := c.Categories[i]
			return &cat, nil
		}
	}
	return nil, nil
}

func (c *Catalog) ChildCategories(_ context.Context, parentID *int64) ([]domain.Category, error) {
	var out []domain.Category
	for _, cat := range c.Categories {
		switch {
		case parentID == nil && cat.ParentID == nil:
			out = append(out, cat)
		case parentID != nil && cat.ParentID != nil && *cat.ParentID == *parentID:
			out = append(out, cat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c *Catalog) CategoriesBySlugOrID(ctx context.Context, values []string) ([]domain.Category, error) {
	var out []domain.Category
	seen := make(map[int64]struct{})
	for _, value := range values {
		cat, err := c.CategoryByIDOrSlug(ctx, value)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			continue
		}
		if _, dup := seen[cat.ID]; dup {
			continue
		}
		seen[cat.ID] = struct{}{}
		out = append(out, *cat)
	}
	return out, nil
}

func (c *Catalog) BrandByIDOrSlug(_ context.Context, value string) (*domain.Brand, error) {
	if id, err := strconv.ParseInt(value, 10, 64); err == nil {
		for i := range c.Brands {
			if c.Brands[i].ID == id {
				b := c.Brands[i]
				return &b, nil
			}
		}
	}
	for i := range c.Brands {
		if c.Brands[i].Slug == value {
			b := c.Brands[i]
			return &b, nil
		}
	}
	return nil, nil
}

func (c *Catalog) BrandsWithAvailableProducts(_ context.Context, categoryIDs []int64, limit int) ([]domain.Brand, error) {
	inScope := func(p domain.Product) bool {
		if !p.Available {
			return false
		}
		if len(categoryIDs) == 0 {
			return true
		}
		for _, id := range categoryIDs {
			if p.CategoryID == id {
				return true
			}
		}
		return false
	}

	withProducts := make(map[int64]struct{})
	for _, p := range c.Products {
		if inScope(p) {
			withProducts[p.BrandID] = struct{}{}
		}
	}

	var out []domain.Brand
	for _, b := range c.Brands {
		if _, ok := withProducts[b.ID]; ok {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (c *Catalog) ParameterBySlug(_ context.Context, slug string) (*domain.Parameter, error) {
	for i := range c.Parameters {
		if c.Parameters[i].Slug == slug {
			p := c.Parameters[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (c *Catalog) ParametersWithValues(_ context.Context, categoryIDs []int64, slugs []string) ([]port.ParameterWithValues, error) {
	inCategories := func(p domain.Product) bool {
		if len(categoryIDs) == 0 {
			return true
		}
		for _, id := range categoryIDs {
			if p.CategoryID == id {
				return true
			}
		}
		return false
	}
	slugAllowed := func(slug string) bool {
		if len(slugs) == 0 {
			return true
		}
		for _, s := range slugs {
			if s == slug {
				return true
			}
		}
		return false
	}

	paramName := make(map[string]string)
	for _, p := range c.Parameters {
		paramName[p.Slug] = p.Name
	}

	grouped := make(map[string][]domain.ParameterValue)
	seen := make(map[string]struct{})
	for _, product := range c.Products {
		if !product.Available || !inCategories(product) {
			continue
		}
		for _, attr := range product.Attributes {
			if !slugAllowed(attr.ParameterSlug) {
				continue
			}
			key := attr.ParameterSlug + ":" + attr.ValueSlug
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			grouped[attr.ParameterSlug] = append(grouped[attr.ParameterSlug], domain.ParameterValue{
				Value:     attr.Value,
				ValueSlug: attr.ValueSlug,
			})
		}
	}

	dims := make([]string, 0, len(grouped))
	for dim := range grouped {
		dims = append(dims, dim)
	}
	sort.Strings(dims)

	out := make([]port.ParameterWithValues, 0, len(dims))
	for _, dim := range dims {
		name := paramName[dim]
		if name == "" {
			name = dim
		}
		values := grouped[dim]
		sort.Slice(values, func(i, j int) bool { return values[i].Value < values[j].Value })
		out = append(out, port.ParameterWithValues{
			Parameter: domain.Parameter{Name: name, Slug: dim},
			Values:    values,
		})
	}
	return out, nil
}

func (c *Catalog) ResolveParameterValueSlug(_ context.Context, parameterSlug, value string) (string, bool, error) {
	for _, product := range c.Products {
		for _, attr := range product.Attributes {
			if attr.ParameterSlug != parameterSlug {
				continue
			}
			if attr.Value == value || attr.RawValue == value || attr.ValueSlug == value {
				return attr.ValueSlug, true, nil
			}
		}
	}
	return "", false, nil
}

func (c *Catalog) AvailableProductIDs(_ context.Context) ([]int64, error) {
	var ids []int64
	for _, p := range c.Products {
		if p.Available {
			ids = append(ids, p.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (c *Catalog) ProductsForIndexing(_ context.Context, afterID int64, limit int) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range c.Products {
		if p.Available && p.ID > afterID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
