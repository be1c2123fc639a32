package domain

// Selection is the resolved page-local UI state for a product detail view:
// which variant is active and which image is displayed. Exactly one variant
// is selected once resolved; a multi-variant product with no valid choice
// stays explicitly unselected and the cart control is disabled.
type Selection struct {
	Variant *Variant
	Asset   *Asset
}

// HasVariant reports whether a variant is selected. Cart submission requires
// a selected variant.
func (s Selection) HasVariant() bool {
	return s.Variant != nil
}

// VariantID returns the selected variant's id, or "" when unselected.
func (s Selection) VariantID() string {
	if s.Variant == nil {
		return ""
	}
	return s.Variant.ID
}

// ResolveVariant determines the active variant for a product page.
//
// A single-variant product always selects its variant, regardless of the
// requested id. With multiple variants, a matching requested id selects that
// variant; an absent or stale id leaves the selection unset so the shopper
// must choose explicitly rather than silently buying the first variant.
func ResolveVariant(p *Product, requestedID string) *Variant {
	if p == nil || len(p.Variants) == 0 {
		return nil
	}
	if len(p.Variants) == 1 {
		return &p.Variants[0]
	}
	if requestedID == "" {
		return nil
	}
	return p.VariantByID(requestedID)
}

// DefaultAsset returns the image shown when the variant changes (or on first
// render): the variant's first asset when it has any, otherwise the product's
// featured asset.
func DefaultAsset(p *Product, v *Variant) *Asset {
	if v != nil && len(v.Assets) > 0 {
		return &v.Assets[0]
	}
	if p != nil {
		return p.FeaturedAsset
	}
	return nil
}

// Resolve computes the full selection for a product page. requestedAssetID is
// honored only when the asset belongs to the product's asset list or the
// selected variant's asset list; anything else falls back to the default
// asset for the resolved variant.
func Resolve(p *Product, requestedVariantID, requestedAssetID string) Selection {
	variant := ResolveVariant(p, requestedVariantID)

	if requestedAssetID != "" {
		if a := findAsset(p, variant, requestedAssetID); a != nil {
			return Selection{Variant: variant, Asset: a}
		}
	}

	return Selection{Variant: variant, Asset: DefaultAsset(p, variant)}
}

func findAsset(p *Product, v *Variant, assetID string) *Asset {
	if p != nil {
		for i := range p.Assets {
			if p.Assets[i].ID == assetID {
				return &p.Assets[i]
			}
		}
	}
	if v != nil {
		for i := range v.Assets {
			if v.Assets[i].ID == assetID {
				return &v.Assets[i]
			}
		}
	}
	return nil
}
