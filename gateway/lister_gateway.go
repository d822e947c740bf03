package gateway

import (
	"context"

	"catalog-engine/domain"
	"catalog-engine/driver"
	"catalog-engine/port"
)

// ListerGateway adapts the pgx product lister to port.ProductLister.
type ListerGateway struct {
	driver *driver.ProductListerDriver
}

func NewListerGateway(d *driver.ProductListerDriver) *ListerGateway {
	return &ListerGateway{driver: d}
}

func (g *ListerGateway) List(ctx context.Context, ids []int64, sortField, order string, limit, page int) ([]domain.Product, int64, error) {
	rows, total, err := g.driver.List(ctx, ids, sortField, order, limit, page)
	if err != nil {
		return nil, 0, &port.RepositoryError{Op: "List", Err: err.Error()}
	}

	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Product{
			ID:         row.ID,
			ExternalID: row.ExternalID,
			Name:       row.Name,
			Price:      row.Price,
			Stock:      row.Stock,
			Available:  row.Available,
			Currency:   row.Currency,
			BrandID:    row.BrandID,
			BrandName:  row.BrandName,
			BrandSlug:  row.BrandSlug,
			CategoryID: row.CategoryID,
		})
	}
	return out, total, nil
}
