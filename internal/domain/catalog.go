package domain

import (
	"fmt"
	"strings"
)

// rootCollectionName is the sentinel root of the collection tree in the
// commerce backend. It never appears in a visible breadcrumb trail; the
// fixed home link stands in for it.
const rootCollectionName = "__root_collection__"

// StockLevel is the commerce API's coarse stock indicator for a variant.
type StockLevel string

const (
	StockInStock    StockLevel = "IN_STOCK"
	StockLowStock   StockLevel = "LOW_STOCK"
	StockOutOfStock StockLevel = "OUT_OF_STOCK"
)

// Label returns the human-readable stock label shown next to the SKU.
func (s StockLevel) Label() string {
	switch s {
	case StockInStock:
		return "In stock"
	case StockLowStock:
		return "Low stock"
	case StockOutOfStock:
		return "Out of stock"
	default:
		return ""
	}
}

// Asset is an image belonging to a product or variant. Preview is a base URL;
// the external image resizer accepts w/h query parameters.
type Asset struct {
	ID      string `json:"id"`
	Preview string `json:"preview"`
}

// PreviewWidth returns the preview URL resized to the given pixel width.
func (a Asset) PreviewWidth(px int) string {
	return resizeURL(a.Preview, "w", px)
}

// PreviewHeight returns the preview URL resized to the given pixel height.
func (a Asset) PreviewHeight(px int) string {
	return resizeURL(a.Preview, "h", px)
}

func resizeURL(base, dim string, px int) string {
	if base == "" {
		return ""
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s%s=%d", base, sep, dim, px)
}

// Breadcrumb is one entry in a collection's ancestor trail.
type Breadcrumb struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Collection is a navigable product grouping.
type Collection struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	FeaturedAsset *Asset           `json:"featured_asset,omitempty"`
	Breadcrumbs   []Breadcrumb     `json:"breadcrumbs,omitempty"`
	Products      []ProductPreview `json:"products,omitempty"`
}

// ProductPreview is the card-sized product summary shown on collection pages.
type ProductPreview struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	FeaturedAsset *Asset `json:"featured_asset,omitempty"`
}

// FacetValue is a tag attached to a product, qualified by its facet code.
type FacetValue struct {
	FacetCode string `json:"facet_code"`
	Name      string `json:"name"`
}

// Variant is a purchasable configuration of a product.
type Variant struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	SKU          string     `json:"sku"`
	PriceWithTax int64      `json:"price_with_tax"`
	CurrencyCode string     `json:"currency_code"`
	StockLevel   StockLevel `json:"stock_level"`
	Assets       []Asset    `json:"assets"`
}

// Product is a catalog entry. Immutable for the lifetime of a page view.
type Product struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Slug          string       `json:"slug"`
	Description   string       `json:"description"` // rich text HTML from the commerce API
	FeaturedAsset *Asset       `json:"featured_asset,omitempty"`
	Assets        []Asset      `json:"assets"`
	Variants      []Variant    `json:"variants"`
	Collections   []Collection `json:"collections"`
	FacetValues   []FacetValue `json:"facet_values"`
}

// VariantByID returns the variant with the given id, or nil when no variant
// matches.
func (p *Product) VariantByID(id string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i]
		}
	}
	return nil
}

// BrandName returns the name of the product's "brand" facet value, or ""
// when the product carries no brand tag.
func (p *Product) BrandName() string {
	for _, fv := range p.FacetValues {
		if fv.FacetCode == "brand" {
			return fv.Name
		}
	}
	return ""
}

// BreadcrumbTrail returns the visible breadcrumb trail for the product: the
// trail of its last collection with the sentinel root entry filtered out.
func (p *Product) BreadcrumbTrail() []Breadcrumb {
	if len(p.Collections) == 0 {
		return nil
	}
	return VisibleBreadcrumbs(p.Collections[len(p.Collections)-1].Breadcrumbs)
}

// VisibleBreadcrumbs filters the sentinel root collection out of a trail.
func VisibleBreadcrumbs(trail []Breadcrumb) []Breadcrumb {
	out := make([]Breadcrumb, 0, len(trail))
	for _, b := range trail {
		if b.Name == rootCollectionName {
			continue
		}
		out = append(out, b)
	}
	return out
}

// PageTitle derives the document title for a product page.
func PageTitle(productName, appName string) string {
	if productName == "" {
		return appName
	}
	return productName + " - " + appName
}
