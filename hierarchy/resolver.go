// Package hierarchy resolves category descendant and ancestor sets over
// the catalog's parent-linked category forest.
package hierarchy

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"catalog-engine/domain"
	"catalog-engine/port"
)

const cacheSize = 4096

// Resolver memoizes descendant sets per category id. Traversal is
// iterative with a visited set, so malformed import data containing a
// cycle terminates instead of looping. Invalidate must be called whenever
// the hierarchy changes (each rebuild).
type Resolver struct {
	catalog port.CatalogStore
	cache   *lru.Cache[int64, []int64]
	group   singleflight.Group
	log     *slog.Logger
}

func NewResolver(catalog port.CatalogStore, log *slog.Logger) (*Resolver, error) {
	cache, err := lru.New[int64, []int64](cacheSize)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{catalog: catalog, cache: cache, log: log}, nil
}

// DescendantsOf returns the category id plus every descendant id.
// Concurrent calls for the same id share one traversal.
func (r *Resolver) DescendantsOf(ctx context.Context, categoryID int64) ([]int64, error) {
	if ids, ok := r.cache.Get(categoryID); ok {
		return ids, nil
	}

	result, err, _ := r.group.Do(fmt.Sprintf("desc:%d", categoryID), func() (interface{}, error) {
		ids, err := r.traverseDescendants(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		r.cache.Add(categoryID, ids)
		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]int64), nil
}

func (r *Resolver) traverseDescendants(ctx context.Context, categoryID int64) ([]int64, error) {
	visited := map[int64]struct{}{categoryID: {}}
	order := []int64{categoryID}
	worklist := []int64{categoryID}

	for len(worklist) > 0 {
		current := worklist[0]
		worklist = worklist[1:]

		children, err := r.catalog.ChildCategories(ctx, &current)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			if _, seen := visited[child.ID]; seen {
				// A repeated id means the forest is malformed; stop the
				// branch rather than loop.
				r.log.Warn("category cycle detected", "category_id", child.ID)
				continue
			}
			visited[child.ID] = struct{}{}
			order = append(order, child.ID)
			worklist = append(worklist, child.ID)
		}
	}
	return order, nil
}

// AncestorsOf returns the ids of every ancestor of the category,
// excluding the category itself, nearest parent first.
func (r *Resolver) AncestorsOf(ctx context.Context, categoryID int64) ([]int64, error) {
	visited := map[int64]struct{}{categoryID: {}}
	var ancestors []int64

	current, err := r.catalog.CategoryByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	for current != nil && current.ParentID != nil {
		parentID := *current.ParentID
		if _, seen := visited[parentID]; seen {
			r.log.Warn("category cycle detected", "category_id", parentID)
			break
		}
		visited[parentID] = struct{}{}
		ancestors = append(ancestors, parentID)

		current, err = r.catalog.CategoryByID(ctx, parentID)
		if err != nil {
			return nil, err
		}
	}
	return ancestors, nil
}

// Resolve looks a category up by numeric id first, then slug. A miss is
// (nil, nil), not an error.
func (r *Resolver) Resolve(ctx context.Context, idOrSlug string) (*domain.Category, error) {
	return r.catalog.CategoryByIDOrSlug(ctx, idOrSlug)
}

// Invalidate drops every memoized descendant set. Called on rebuild.
func (r *Resolver) Invalidate() {
	r.cache.Purge()
}
