// Package importer loads the catalog from a bulk XML feed and triggers a
// facet index rebuild. The feed lists categories before offers, so one
// streaming pass suffices: categories are persisted when the first offer
// appears.
package importer

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"catalog-engine/domain"
	"catalog-engine/normalizer"
	"catalog-engine/port"
	appOtel "catalog-engine/utils/otel"
)

// brandParamName is the feed's vendor-duplicating parameter; the vendor
// element is authoritative, so the parameter is dropped.
const brandParamName = "Бренд"

// Rebuilder rebuilds the facet index after the catalog changed.
type Rebuilder interface {
	Rebuild(ctx context.Context) (domain.RebuildStats, error)
}

// Stats reports one import run. Per-record failures increment Errors
// without aborting the run.
type Stats struct {
	Categories int                  `json:"categories"`
	Products   int                  `json:"products"`
	Errors     int                  `json:"errors"`
	Rebuild    *domain.RebuildStats `json:"rebuild,omitempty"`
}

type Importer struct {
	writer     port.CatalogWriter
	normalizer *normalizer.Normalizer
	rebuilder  Rebuilder
	log        *slog.Logger
}

func New(writer port.CatalogWriter, n *normalizer.Normalizer, rebuilder Rebuilder, log *slog.Logger) *Importer {
	if log == nil {
		log = slog.Default()
	}
	return &Importer{writer: writer, normalizer: n, rebuilder: rebuilder, log: log}
}

type xmlCategory struct {
	ID       string `xml:"id,attr"`
	ParentID string `xml:"parentId,attr"`
	Name     string `xml:",chardata"`
}

type xmlParam struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type xmlOffer struct {
	ID          string     `xml:"id,attr"`
	Available   string     `xml:"available,attr"`
	Name        string     `xml:"name"`
	Price       float64    `xml:"price"`
	Stock       int        `xml:"stock_quantity"`
	Currency    string     `xml:"currencyId"`
	CategoryID  string     `xml:"categoryId"`
	Vendor      string     `xml:"vendor"`
	VendorCode  string     `xml:"vendorCode"`
	Barcode     string     `xml:"barcode"`
	Description string     `xml:"description"`
	Pictures    []string   `xml:"picture"`
	Params      []xmlParam `xml:"param"`
}

// ImportFile runs Import over the feed at path.
func (im *Importer) ImportFile(ctx context.Context, path string) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, err
	}
	defer f.Close()
	return im.Import(ctx, f)
}

// Import parses the feed, persists categories and products, and rebuilds
// the facet index.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Stats, error) {
	var stats Stats
	var categories []domain.ImportCategory
	categoriesSaved := false

	decoder := xml.NewDecoder(r)
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("parse feed: %w", err)
		}

		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "category":
			var category xmlCategory
			if err := decoder.DecodeElement(&category, &start); err != nil {
				im.log.Warn("malformed category element", "err", err)
				stats.Errors++
				continue
			}
			categories = append(categories, domain.ImportCategory{
				ExternalID: category.ID,
				Name:       category.Name,
				ParentID:   category.ParentID,
			})

		case "offer":
			if !categoriesSaved {
				saved, err := im.saveCategories(ctx, categories)
				if err != nil {
					return stats, err
				}
				stats.Categories = saved
				categoriesSaved = true
			}

			var offer xmlOffer
			if err := decoder.DecodeElement(&offer, &start); err != nil {
				im.log.Warn("malformed offer element", "err", err)
				stats.Errors++
				continue
			}
			if err := im.saveOffer(ctx, offer); err != nil {
				im.log.Error("offer import failed", "external_id", offer.ID, "err", err)
				stats.Errors++
				continue
			}
			stats.Products++
		}

		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}
	}

	if !categoriesSaved {
		saved, err := im.saveCategories(ctx, categories)
		if err != nil {
			return stats, err
		}
		stats.Categories = saved
	}

	if im.rebuilder != nil {
		rebuild, err := im.rebuilder.Rebuild(ctx)
		if err != nil {
			return stats, fmt.Errorf("rebuild index: %w", err)
		}
		stats.Rebuild = &rebuild
	}

	if m := appOtel.Metrics; m != nil {
		attrs := attribute.String("operation", "import")
		if stats.Products > 0 {
			m.OffersImportedTotal.Add(ctx, int64(stats.Products), metric.WithAttributes(attrs))
		}
		if stats.Errors > 0 {
			m.ErrorsTotal.Add(ctx, int64(stats.Errors), metric.WithAttributes(attrs))
		}
	}

	im.log.Info("import finished",
		"categories", stats.Categories,
		"products", stats.Products,
		"errors", stats.Errors,
	)
	return stats, nil
}

// saveCategories upserts categories, then wires parents in a second pass
// so order in the feed does not matter. A category whose name slugs to an
// existing brand is skipped unless other categories parent under it; feeds
// repeat vendor names as pseudo-categories and those would shadow the
// brand dimension.
func (im *Importer) saveCategories(ctx context.Context, categories []domain.ImportCategory) (int, error) {
	parents := make(map[string]struct{})
	for _, category := range categories {
		if category.ParentID != "" {
			parents[category.ParentID] = struct{}{}
		}
	}

	skipped := make(map[string]struct{})
	saved := 0
	for _, category := range categories {
		if _, isParent := parents[category.ExternalID]; !isParent {
			collides, err := im.writer.BrandSlugExists(ctx, domain.Slug(category.Name))
			if err != nil {
				return saved, err
			}
			if collides {
				im.log.Info("skipping category matching a brand",
					"name", category.Name,
					"external_id", category.ExternalID,
				)
				skipped[category.ExternalID] = struct{}{}
				continue
			}
		}

		slug := domain.CategorySlug(category.Name, category.ExternalID)
		if _, err := im.writer.UpsertCategory(ctx, category.ExternalID, category.Name, slug); err != nil {
			return saved, err
		}
		saved++
	}

	for _, category := range categories {
		if category.ParentID == "" {
			continue
		}
		if _, ok := skipped[category.ExternalID]; ok {
			continue
		}
		if err := im.writer.SetCategoryParent(ctx, category.ExternalID, category.ParentID); err != nil {
			im.log.Warn("parent category not linked",
				"external_id", category.ExternalID,
				"parent_external_id", category.ParentID,
				"err", err,
			)
		}
	}
	return saved, nil
}

func (im *Importer) saveOffer(ctx context.Context, offer xmlOffer) error {
	if err := validateOffer(offer); err != nil {
		return err
	}

	brandID, err := im.writer.UpsertBrand(ctx, offer.Vendor, domain.Slug(offer.Vendor))
	if err != nil {
		return err
	}

	categoryID, ok, err := im.writer.CategoryIDByExternalID(ctx, offer.CategoryID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("unknown category: %s", offer.CategoryID)
	}

	available, _ := strconv.ParseBool(offer.Available)
	product := domain.ImportProduct{
		ExternalID:         offer.ID,
		Available:          available,
		CategoryExternalID: offer.CategoryID,
		Name:               offer.Name,
		Price:              offer.Price,
		Stock:              offer.Stock,
		Currency:           offer.Currency,
		Vendor:             offer.Vendor,
		VendorCode:         offer.VendorCode,
		Barcode:            offer.Barcode,
		Description:        offer.Description,
	}

	productID, err := im.writer.UpsertProduct(ctx, product, brandID, categoryID)
	if err != nil {
		return err
	}

	var attrs []domain.ProductAttribute
	for _, param := range offer.Params {
		if param.Name == brandParamName || param.Name == "" {
			continue
		}
		parameterSlug := domain.Slug(param.Name)
		canonical, valueSlug := im.normalizer.Normalize(parameterSlug, param.Value)
		attrs = append(attrs, domain.ProductAttribute{
			ParameterSlug: parameterSlug,
			ParameterName: param.Name,
			RawValue:      param.Value,
			Value:         canonical,
			ValueSlug:     valueSlug,
		})
	}
	if err := im.writer.ReplaceProductAttributes(ctx, productID, attrs); err != nil {
		return err
	}

	return im.writer.ReplaceProductPictures(ctx, productID, offer.Pictures)
}

func validateOffer(offer xmlOffer) error {
	switch {
	case offer.ID == "":
		return errors.New("offer is missing an id")
	case offer.Name == "":
		return errors.New("offer is missing a name")
	case offer.Price <= 0:
		return errors.New("offer is missing a price")
	case offer.Vendor == "":
		return errors.New("offer is missing a vendor")
	case offer.CategoryID == "":
		return errors.New("offer is missing a category")
	}
	return nil
}
