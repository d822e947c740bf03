package driver

import (
	"context"
)

// Sort fields accepted by the product lister. Anything else falls back to
// the default price ordering.
var listSortColumns = map[string]string{
	"price": "p.price",
	"name":  "p.name",
	"id":    "p.id",
}

// ProductListerDriver pages and sorts product records for a matching id
// set. It is the engine's external listing collaborator.
type ProductListerDriver struct {
	pool Querier
}

func NewProductListerDriver(pool Querier) *ProductListerDriver {
	return &ProductListerDriver{pool: pool}
}

// List returns one page of products restricted to ids, plus the total
// match count. Sort column and direction are whitelisted, never
// interpolated from raw input.
func (d *ProductListerDriver) List(ctx context.Context, ids []int64, sortField, order string, limit, page int) ([]ProductRow, int64, error) {
	if len(ids) == 0 {
		return nil, 0, nil
	}

	column, ok := listSortColumns[sortField]
	if !ok {
		column = listSortColumns["price"]
	}
	direction := "ASC"
	if order == "desc" {
		direction = "DESC"
	}
	if limit <= 0 {
		limit = 24
	}
	if page <= 0 {
		page = 1
	}

	var total int64
	if err := d.pool.QueryRow(ctx,
		`SELECT count(*) FROM products p WHERE p.id = ANY($1)`, ids,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := d.pool.Query(ctx, `
		SELECT p.id, p.external_id, p.name, p.price, p.stock, p.available, p.currency,
		       b.id, b.name, b.slug, p.category_id
		FROM products p
		JOIN brands b ON b.id = p.brand_id
		WHERE p.id = ANY($1)
		ORDER BY `+column+` `+direction+`, p.id ASC
		LIMIT $2 OFFSET $3`, ids, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []ProductRow
	for rows.Next() {
		var row ProductRow
		if err := rows.Scan(
			&row.ID, &row.ExternalID, &row.Name, &row.Price, &row.Stock, &row.Available,
			&row.Currency, &row.BrandID, &row.BrandName, &row.BrandSlug, &row.CategoryID,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, row)
	}
	return out, total, rows.Err()
}
