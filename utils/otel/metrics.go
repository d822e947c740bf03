package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all OTel metric instruments for catalog-engine.
var Metrics *CatalogMetrics

// CatalogMetrics contains all metric instruments.
type CatalogMetrics struct {
	ProductsIndexedTotal metric.Int64Counter
	OffersImportedTotal  metric.Int64Counter
	ErrorsTotal          metric.Int64Counter
	RebuildDuration      metric.Float64Histogram
	RequestDuration      metric.Float64Histogram
}

// InitMetrics initializes all metric instruments.
func InitMetrics() error {
	meter := otel.Meter("catalog-engine")

	productsIndexed, err := meter.Int64Counter("catalog_engine_products_indexed_total",
		metric.WithDescription("Total number of products written to the facet index"),
	)
	if err != nil {
		return err
	}

	offersImported, err := meter.Int64Counter("catalog_engine_offers_imported_total",
		metric.WithDescription("Total number of offers imported from catalog feeds"),
	)
	if err != nil {
		return err
	}

	errorsTotal, err := meter.Int64Counter("catalog_engine_errors_total",
		metric.WithDescription("Total number of errors"),
	)
	if err != nil {
		return err
	}

	rebuildDuration, err := meter.Float64Histogram("catalog_engine_rebuild_duration_seconds",
		metric.WithDescription("Facet index rebuild duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	requestDuration, err := meter.Float64Histogram("catalog_engine_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	Metrics = &CatalogMetrics{
		ProductsIndexedTotal: productsIndexed,
		OffersImportedTotal:  offersImported,
		ErrorsTotal:          errorsTotal,
		RebuildDuration:      rebuildDuration,
		RequestDuration:      requestDuration,
	}

	return nil
}
