// Package rest exposes the query engine over HTTP. Handlers validate
// input at the boundary and translate engine results into response
// shapes; they hold no state beyond their collaborators.
package rest

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"catalog-engine/domain"
)

// FilterEngine is the slice of the query engine the handlers need.
type FilterEngine interface {
	ResolveProductIDs(ctx context.Context, filters domain.FilterSelection) ([]int64, error)
	ListFacets(ctx context.Context, requested string, filters domain.FilterSelection) ([]domain.FacetGroup, error)
}

// FiltersHandler serves the facet value listing.
type FiltersHandler struct {
	engine FilterEngine
}

func NewFiltersHandler(engine FilterEngine) *FiltersHandler {
	return &FiltersHandler{engine: engine}
}

type filtersResponse struct {
	Filters []domain.FacetGroup `json:"filters"`
}

// Handle processes GET /v1/catalog/filters.
func (h *FiltersHandler) Handle(c echo.Context) error {
	selection, err := parseSelection(c.QueryParams())
	if err != nil {
		return err
	}

	requested := c.QueryParam("paramSlug")
	if requested == "" {
		requested = domain.AllDimensions
	}

	groups, err := h.engine.ListFacets(c.Request().Context(), requested, selection)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list filters")
	}
	if groups == nil {
		groups = []domain.FacetGroup{}
	}
	return c.JSON(http.StatusOK, filtersResponse{Filters: groups})
}
