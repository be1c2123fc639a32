package commerce

import (
	"context"
	"fmt"

	"github.com/gnimmelf/eike-storefront/internal/domain"
)

type gqlOrderLine struct {
	ID               string    `json:"id"`
	Quantity         int       `json:"quantity"`
	LinePriceWithTax int64     `json:"linePriceWithTax"`
	FeaturedAsset    *gqlAsset `json:"featuredAsset"`
	ProductVariant   struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"productVariant"`
}

type gqlOrder struct {
	ID            string         `json:"id"`
	Code          string         `json:"code"`
	TotalQuantity int            `json:"totalQuantity"`
	TotalWithTax  int64          `json:"totalWithTax"`
	CurrencyCode  string         `json:"currencyCode"`
	Lines         []gqlOrderLine `json:"lines"`
}

func (o *gqlOrder) toDomain() *domain.ActiveOrder {
	if o == nil {
		return nil
	}
	lines := make([]domain.OrderLine, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = domain.OrderLine{
			ID:               l.ID,
			Quantity:         l.Quantity,
			LinePriceWithTax: l.LinePriceWithTax,
			VariantID:        l.ProductVariant.ID,
			VariantName:      l.ProductVariant.Name,
			FeaturedAsset:    l.FeaturedAsset.toDomain(),
		}
	}
	return &domain.ActiveOrder{
		ID:            o.ID,
		Code:          o.Code,
		TotalQuantity: o.TotalQuantity,
		TotalWithTax:  o.TotalWithTax,
		CurrencyCode:  o.CurrencyCode,
		Lines:         lines,
	}
}

// AddItemResult is the tagged outcome of an addItemToOrder mutation: exactly
// one of Order or Err is set.
type AddItemResult struct {
	Order *domain.ActiveOrder
	Err   *domain.OrderError
}

// GetActiveOrder fetches the shopper's in-progress order. A nil order (no
// error) means the session has no open cart yet.
func (c *Client) GetActiveOrder(ctx context.Context, token string) (*domain.ActiveOrder, error) {
	var data struct {
		ActiveOrder *gqlOrder `json:"activeOrder"`
	}

	if _, err := c.execute(ctx, token, activeOrderQuery, nil, &data); err != nil {
		return nil, fmt.Errorf("get active order: %w", err)
	}

	return data.ActiveOrder.toDomain(), nil
}

// AddItemToOrder submits an add-item mutation. Domain failures (stock,
// quantity, order state) come back inside AddItemResult, not as an error;
// the error return is reserved for transport and protocol failures. The
// returned token is the refreshed shop API session token ("" when unchanged).
func (c *Client) AddItemToOrder(ctx context.Context, token, variantID string, quantity int) (AddItemResult, string, error) {
	var data struct {
		AddItemToOrder struct {
			Typename  string `json:"__typename"`
			ErrorCode string `json:"errorCode"`
			Message   string `json:"message"`
			gqlOrder
		} `json:"addItemToOrder"`
	}

	newToken, err := c.execute(ctx, token, addItemToOrderMutation, map[string]any{
		"variantId": variantID,
		"quantity":  quantity,
	}, &data)
	if err != nil {
		return AddItemResult{}, "", fmt.Errorf("add item to order: %w", err)
	}

	if data.AddItemToOrder.ErrorCode != "" {
		return AddItemResult{Err: &domain.OrderError{
			Code:    data.AddItemToOrder.ErrorCode,
			Message: data.AddItemToOrder.Message,
		}}, newToken, nil
	}

	return AddItemResult{Order: data.AddItemToOrder.gqlOrder.toDomain()}, newToken, nil
}
