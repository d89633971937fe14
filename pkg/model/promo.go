package model

const (
	PromoTypePercent = "percent"
	PromoTypeFlat    = "flat"
)

// PromoRule describes one discount rule in the static promo catalog.
// MinAmount of zero means no qualifying minimum.
type PromoRule struct {
	Type        string  `json:"type"`
	Value       float64 `json:"value"`
	MinAmount   float64 `json:"minAmount"`
	Description string  `json:"description,omitempty"`
}

// PromoCatalog maps upper-case promo codes to their rules. The catalog
// is configuration, not persisted state; it is injected into the promo
// engine so tests can substitute their own.
type PromoCatalog map[string]PromoRule
