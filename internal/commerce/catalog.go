package commerce

import (
	"context"
	"fmt"

	"github.com/gnimmelf/eike-storefront/internal/domain"
)

// Wire DTOs for the shop API's catalog shapes. They stay private to this
// package; everything leaving it is a domain record.

type gqlAsset struct {
	ID      string `json:"id"`
	Preview string `json:"preview"`
}

func (a *gqlAsset) toDomain() *domain.Asset {
	if a == nil {
		return nil
	}
	return &domain.Asset{ID: a.ID, Preview: a.Preview}
}

func assetsToDomain(in []gqlAsset) []domain.Asset {
	out := make([]domain.Asset, len(in))
	for i, a := range in {
		out[i] = domain.Asset{ID: a.ID, Preview: a.Preview}
	}
	return out
}

type gqlBreadcrumb struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type gqlCollection struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Slug          string          `json:"slug"`
	FeaturedAsset *gqlAsset       `json:"featuredAsset"`
	Breadcrumbs   []gqlBreadcrumb `json:"breadcrumbs"`
}

func (c gqlCollection) toDomain() domain.Collection {
	crumbs := make([]domain.Breadcrumb, len(c.Breadcrumbs))
	for i, b := range c.Breadcrumbs {
		crumbs[i] = domain.Breadcrumb{ID: b.ID, Name: b.Name, Slug: b.Slug}
	}
	return domain.Collection{
		ID:            c.ID,
		Name:          c.Name,
		Slug:          c.Slug,
		FeaturedAsset: c.FeaturedAsset.toDomain(),
		Breadcrumbs:   crumbs,
	}
}

type gqlVariant struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	SKU          string     `json:"sku"`
	PriceWithTax int64      `json:"priceWithTax"`
	CurrencyCode string     `json:"currencyCode"`
	StockLevel   string     `json:"stockLevel"`
	Assets       []gqlAsset `json:"assets"`
}

type gqlProduct struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Slug          string          `json:"slug"`
	Description   string          `json:"description"`
	FeaturedAsset *gqlAsset       `json:"featuredAsset"`
	Assets        []gqlAsset      `json:"assets"`
	Variants      []gqlVariant    `json:"variants"`
	Collections   []gqlCollection `json:"collections"`
	FacetValues   []struct {
		Name  string `json:"name"`
		Facet struct {
			Code string `json:"code"`
		} `json:"facet"`
	} `json:"facetValues"`
}

func (p *gqlProduct) toDomain() *domain.Product {
	variants := make([]domain.Variant, len(p.Variants))
	for i, v := range p.Variants {
		variants[i] = domain.Variant{
			ID:           v.ID,
			Name:         v.Name,
			SKU:          v.SKU,
			PriceWithTax: v.PriceWithTax,
			CurrencyCode: v.CurrencyCode,
			StockLevel:   domain.StockLevel(v.StockLevel),
			Assets:       assetsToDomain(v.Assets),
		}
	}

	collections := make([]domain.Collection, len(p.Collections))
	for i, c := range p.Collections {
		collections[i] = c.toDomain()
	}

	facetValues := make([]domain.FacetValue, len(p.FacetValues))
	for i, fv := range p.FacetValues {
		facetValues[i] = domain.FacetValue{FacetCode: fv.Facet.Code, Name: fv.Name}
	}

	return &domain.Product{
		ID:            p.ID,
		Name:          p.Name,
		Slug:          p.Slug,
		Description:   p.Description,
		FeaturedAsset: p.FeaturedAsset.toDomain(),
		Assets:        assetsToDomain(p.Assets),
		Variants:      variants,
		Collections:   collections,
		FacetValues:   facetValues,
	}
}

// GetCollections fetches the top-level collections for navigation and the
// home page grid.
func (c *Client) GetCollections(ctx context.Context) ([]domain.Collection, error) {
	var data struct {
		Collections struct {
			Items []gqlCollection `json:"items"`
		} `json:"collections"`
	}

	if _, err := c.execute(ctx, "", collectionsQuery, nil, &data); err != nil {
		return nil, fmt.Errorf("get collections: %w", err)
	}

	collections := make([]domain.Collection, len(data.Collections.Items))
	for i, item := range data.Collections.Items {
		collections[i] = item.toDomain()
	}
	return collections, nil
}

// GetCollection fetches a single collection with its product previews.
// Returns ErrNotFound when the slug has no match.
func (c *Client) GetCollection(ctx context.Context, slug string) (*domain.Collection, error) {
	var data struct {
		Collection *gqlCollection `json:"collection"`
		Search     struct {
			Items []struct {
				ProductID    string    `json:"productId"`
				ProductName  string    `json:"productName"`
				Slug         string    `json:"slug"`
				ProductAsset *gqlAsset `json:"productAsset"`
			} `json:"items"`
		} `json:"search"`
	}

	if _, err := c.execute(ctx, "", collectionQuery, map[string]any{"slug": slug}, &data); err != nil {
		return nil, fmt.Errorf("get collection %q: %w", slug, err)
	}
	if data.Collection == nil {
		return nil, notFound("collection", slug)
	}

	collection := data.Collection.toDomain()
	collection.Products = make([]domain.ProductPreview, len(data.Search.Items))
	for i, item := range data.Search.Items {
		collection.Products[i] = domain.ProductPreview{
			ID:            item.ProductID,
			Name:          item.ProductName,
			Slug:          item.Slug,
			FeaturedAsset: item.ProductAsset.toDomain(),
		}
	}
	return &collection, nil
}

// GetProductBySlug fetches the full product record for the detail page.
// Returns ErrNotFound when the slug has no match.
func (c *Client) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	var data struct {
		Product *gqlProduct `json:"product"`
	}

	if _, err := c.execute(ctx, "", productBySlugQuery, map[string]any{"slug": slug}, &data); err != nil {
		return nil, fmt.Errorf("get product %q: %w", slug, err)
	}
	if data.Product == nil {
		return nil, notFound("product", slug)
	}

	return data.Product.toDomain(), nil
}
