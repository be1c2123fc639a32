package domain

// ActiveOrder is a read-through snapshot of the shopper's in-progress cart.
// The order itself is owned by the commerce backend; this layer only renders
// it and computes per-variant quantities from its lines.
type ActiveOrder struct {
	ID            string      `json:"id"`
	Code          string      `json:"code"`
	TotalQuantity int         `json:"total_quantity"`
	TotalWithTax  int64       `json:"total_with_tax"`
	CurrencyCode  string      `json:"currency_code"`
	Lines         []OrderLine `json:"lines"`
}

// OrderLine is a single cart line referencing a product variant.
type OrderLine struct {
	ID               string `json:"id"`
	Quantity         int    `json:"quantity"`
	LinePriceWithTax int64  `json:"line_price_with_tax"`
	VariantID        string `json:"variant_id"`
	VariantName      string `json:"variant_name"`
	FeaturedAsset    *Asset `json:"featured_asset,omitempty"`
}

// QuantityForVariant returns how many units of the given variant are already
// in the order. A nil order means an empty cart.
func (o *ActiveOrder) QuantityForVariant(variantID string) int {
	if o == nil || variantID == "" {
		return 0
	}
	for _, line := range o.Lines {
		if line.VariantID == variantID {
			return line.Quantity
		}
	}
	return 0
}

// BadgeQuantity returns the cart badge count. A nil order renders no badge.
func (o *ActiveOrder) BadgeQuantity() int {
	if o == nil {
		return 0
	}
	return o.TotalQuantity
}
