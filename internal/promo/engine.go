package promo

import (
	"math"

	"experia/pkg/model"
	"experia/pkg/sanitizer"
)

// Reason explains why a code did not apply.
type Reason string

const (
	ReasonUnknownCode   Reason = "unknown_code"
	ReasonMinimumNotMet Reason = "minimum_not_met"
)

// Result is the outcome of evaluating a code against an amount. It is a
// pure function of its inputs and the catalog, so the preview endpoint
// and the booking transaction can never disagree.
type Result struct {
	Applicable bool
	Code       string
	Type       string
	Value      float64
	Discount   float64
	MinAmount  float64
	Reason     Reason
}

type Engine struct {
	catalog model.PromoCatalog
}

// NewEngine builds an engine over the given catalog. The catalog is
// injected configuration; tests pass their own.
func NewEngine(catalog model.PromoCatalog) *Engine {
	return &Engine{catalog: catalog}
}

// Evaluate looks up the code (case-insensitive) and computes the
// discount for the given amount. The discount never exceeds the amount,
// and monetary results are rounded to 2 decimal places.
func (e *Engine) Evaluate(code string, amount float64) Result {
	normalized := sanitizer.NormalizePromoCode(code)

	rule, ok := e.catalog[normalized]
	if !ok {
		return Result{Code: normalized, Reason: ReasonUnknownCode}
	}

	if rule.MinAmount > 0 && amount < rule.MinAmount {
		return Result{
			Code:      normalized,
			Type:      rule.Type,
			Value:     rule.Value,
			MinAmount: rule.MinAmount,
			Reason:    ReasonMinimumNotMet,
		}
	}

	var discount float64
	if rule.Type == model.PromoTypePercent {
		discount = amount * rule.Value / 100
	} else {
		discount = rule.Value
	}
	discount = math.Min(discount, amount)

	return Result{
		Applicable: true,
		Code:       normalized,
		Type:       rule.Type,
		Value:      rule.Value,
		MinAmount:  rule.MinAmount,
		Discount:   Round2(discount),
	}
}

// Rules returns the catalog entries keyed by code, for the public
// promo listing.
func (e *Engine) Rules() model.PromoCatalog {
	return e.catalog
}

// Round2 rounds a monetary value to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
