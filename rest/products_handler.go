package rest

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"catalog-engine/port"
)

const (
	defaultPageSize = 24
	maxPageSize     = 100
)

// ProductsHandler serves paginated product listings for a filter
// selection.
type ProductsHandler struct {
	engine FilterEngine
	lister port.ProductLister
}

func NewProductsHandler(engine FilterEngine, lister port.ProductLister) *ProductsHandler {
	return &ProductsHandler{engine: engine, lister: lister}
}

type productResponse struct {
	ID         int64    `json:"id"`
	ExternalID string   `json:"external_id"`
	Name       string   `json:"name"`
	Price      float64  `json:"price"`
	Stock      int      `json:"stock"`
	Currency   string   `json:"currency,omitempty"`
	Brand      string   `json:"brand"`
	BrandSlug  string   `json:"brand_slug"`
	Pictures   []string `json:"pictures,omitempty"`
}

type productsResponse struct {
	Products []productResponse `json:"products"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

// Handle processes GET /v1/catalog/products.
func (h *ProductsHandler) Handle(c echo.Context) error {
	selection, err := parseSelection(c.QueryParams())
	if err != nil {
		return err
	}

	sortField := c.QueryParam("sort")
	if sortField == "" {
		sortField = "id"
	}
	order := c.QueryParam("order")
	if order == "" {
		order = "asc"
	}
	page := intParam(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := intParam(c, "limit", defaultPageSize)
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	ctx := c.Request().Context()
	ids, err := h.engine.ResolveProductIDs(ctx, selection)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to resolve products")
	}

	products, total, err := h.lister.List(ctx, ids, sortField, order, limit, page)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list products")
	}

	response := productsResponse{
		Products: make([]productResponse, 0, len(products)),
		Total:    total,
		Page:     page,
		Limit:    limit,
	}
	for _, p := range products {
		response.Products = append(response.Products, productResponse{
			ID:         p.ID,
			ExternalID: p.ExternalID,
			Name:       p.Name,
			Price:      p.Price,
			Stock:      p.Stock,
			Currency:   p.Currency,
			Brand:      p.BrandName,
			BrandSlug:  p.BrandSlug,
			Pictures:   p.Pictures,
		})
	}
	return c.JSON(http.StatusOK, response)
}

func intParam(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
