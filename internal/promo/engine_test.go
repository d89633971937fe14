package promo

import (
	"testing"

	"experia/pkg/model"
)

func testCatalog() model.PromoCatalog {
	return model.PromoCatalog{
		"SAVE10": {
			Type:      model.PromoTypePercent,
			Value:     10,
			MinAmount: 500,
		},
		"FLAT100": {
			Type:      model.PromoTypeFlat,
			Value:     100,
			MinAmount: 1000,
		},
		"WELCOME20": {
			Type:      model.PromoTypePercent,
			Value:     20,
			MinAmount: 0,
		},
	}
}

func TestEvaluate(t *testing.T) {
	engine := NewEngine(testCatalog())

	tests := []struct {
		name           string
		code           string
		amount         float64
		wantApplicable bool
		wantDiscount   float64
		wantReason     Reason
		wantMinAmount  float64
	}{
		{
			name:           "percent discount above minimum",
			code:           "SAVE10",
			amount:         2000,
			wantApplicable: true,
			wantDiscount:   200,
		},
		{
			name:           "lower-case code is normalized",
			code:           "save10",
			amount:         2000,
			wantApplicable: true,
			wantDiscount:   200,
		},
		{
			name:       "flat discount below minimum",
			code:       "FLAT100",
			amount:     500,
			wantReason: ReasonMinimumNotMet,

			wantMinAmount: 1000,
		},
		{
			name:           "flat discount above minimum",
			code:           "FLAT100",
			amount:         1500,
			wantApplicable: true,
			wantDiscount:   100,
		},
		{
			name:           "zero minimum always qualifies",
			code:           "WELCOME20",
			amount:         10,
			wantApplicable: true,
			wantDiscount:   2,
		},
		{
			name:       "unknown code",
			code:       "XYZ123",
			amount:     2000,
			wantReason: ReasonUnknownCode,
		},
		{
			name:       "percent code below minimum reports the minimum",
			code:       "SAVE10",
			amount:     499.99,
			wantReason: ReasonMinimumNotMet,

			wantMinAmount: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Evaluate(tt.code, tt.amount)

			if result.Applicable != tt.wantApplicable {
				t.Errorf("Applicable = %v, want %v", result.Applicable, tt.wantApplicable)
			}
			if result.Discount != tt.wantDiscount {
				t.Errorf("Discount = %v, want %v", result.Discount, tt.wantDiscount)
			}
			if result.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", result.Reason, tt.wantReason)
			}
			if tt.wantMinAmount != 0 && result.MinAmount != tt.wantMinAmount {
				t.Errorf("MinAmount = %v, want %v", result.MinAmount, tt.wantMinAmount)
			}
		})
	}
}

func TestEvaluateDiscountNeverExceedsAmount(t *testing.T) {
	catalog := model.PromoCatalog{
		"BIGFLAT": {Type: model.PromoTypeFlat, Value: 500, MinAmount: 0},
	}
	engine := NewEngine(catalog)

	result := engine.Evaluate("BIGFLAT", 300)
	if !result.Applicable {
		t.Fatalf("expected code to apply, got reason %q", result.Reason)
	}
	if result.Discount != 300 {
		t.Errorf("Discount = %v, want clamp to amount 300", result.Discount)
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	engine := NewEngine(testCatalog())

	first := engine.Evaluate("SAVE10", 1234.56)
	second := engine.Evaluate("SAVE10", 1234.56)

	if first != second {
		t.Errorf("repeated evaluation differs: %+v vs %+v", first, second)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{123.456, 123.46},
		{123.454, 123.45},
		{0, 0},
		{99.999, 100},
	}

	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
