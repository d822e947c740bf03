package rest

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"catalog-engine/domain"
)

// Rebuilder triggers a full facet index rebuild.
type Rebuilder interface {
	Rebuild(ctx context.Context) (domain.RebuildStats, error)
}

// ReindexHandler triggers a facet index rebuild on demand. The rebuild is
// idempotent, so repeating the request is safe.
type ReindexHandler struct {
	rebuilder Rebuilder
}

func NewReindexHandler(rebuilder Rebuilder) *ReindexHandler {
	return &ReindexHandler{rebuilder: rebuilder}
}

// Handle processes POST /v1/admin/reindex.
func (h *ReindexHandler) Handle(c echo.Context) error {
	stats, err := h.rebuilder.Rebuild(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "rebuild failed")
	}
	return c.JSON(http.StatusOK, stats)
}
