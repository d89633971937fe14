package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"experia/internal/promo"
	httputil "experia/pkg/http"
	"experia/pkg/logger"
	"experia/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type PromoHandler struct {
	engine *promo.Engine
	log    *logger.Logger
}

func NewPromoHandler(engine *promo.Engine, log *logger.Logger) *PromoHandler {
	return &PromoHandler{
		engine: engine,
		log:    log,
	}
}

type validateRequest struct {
	Code   string  `json:"code"`
	Amount float64 `json:"amount"`
}

type validateResponse struct {
	Valid       bool    `json:"valid"`
	Code        string  `json:"code,omitempty"`
	Type        string  `json:"type,omitempty"`
	Value       float64 `json:"value,omitempty"`
	Discount    float64 `json:"discount,omitempty"`
	FinalAmount float64 `json:"finalAmount,omitempty"`
	MinAmount   float64 `json:"minAmount,omitempty"`
	Error       string  `json:"error,omitempty"`
	Message     string  `json:"message,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Validate previews a promo code against an amount. It runs the same
// engine as the booking transaction, so the previewed discount always
// matches what a booking would charge.
func (h *PromoHandler) Validate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, validateResponse{
			Valid: false,
			Error: "Invalid request body",
		})
		return
	}

	if req.Code == "" {
		h.writeJSON(w, http.StatusBadRequest, validateResponse{
			Valid: false,
			Error: "Promo code is required",
		})
		return
	}
	if req.Amount <= 0 {
		h.writeJSON(w, http.StatusBadRequest, validateResponse{
			Valid: false,
			Error: "Valid amount is required",
		})
		return
	}

	result := h.engine.Evaluate(req.Code, req.Amount)

	switch result.Reason {
	case promo.ReasonUnknownCode:
		// Unknown codes are not an HTTP error, just an invalid preview.
		h.writeJSON(w, http.StatusOK, validateResponse{
			Valid:   false,
			Error:   "Invalid promo code",
			Message: "The promo code you entered is not valid",
		})
		return
	case promo.ReasonMinimumNotMet:
		h.writeJSON(w, http.StatusOK, validateResponse{
			Valid:     false,
			Error:     "Minimum amount not met",
			Message:   fmt.Sprintf("This promo code requires a minimum purchase of %.0f", result.MinAmount),
			MinAmount: result.MinAmount,
		})
		return
	}

	rule := h.engine.Rules()[result.Code]

	discountText := fmt.Sprintf("%.0f", result.Value)
	if result.Type == model.PromoTypePercent {
		discountText = fmt.Sprintf("%.0f%%", result.Value)
	}

	h.writeJSON(w, http.StatusOK, validateResponse{
		Valid:       true,
		Code:        result.Code,
		Type:        result.Type,
		Value:       result.Value,
		Discount:    result.Discount,
		FinalAmount: promo.Round2(req.Amount - result.Discount),
		Message:     fmt.Sprintf("%s discount applied successfully!", discountText),
		Description: rule.Description,
	})
}

type promoListing struct {
	Code        string  `json:"code"`
	Type        string  `json:"type"`
	Value       float64 `json:"value"`
	MinAmount   float64 `json:"minAmount"`
	Description string  `json:"description"`
}

// List returns the available promo codes, for display on the checkout
// page.
func (h *PromoHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rules := h.engine.Rules()

	listings := make([]promoListing, 0, len(rules))
	for code, rule := range rules {
		listings = append(listings, promoListing{
			Code:        code,
			Type:        rule.Type,
			Value:       rule.Value,
			MinAmount:   rule.MinAmount,
			Description: rule.Description,
		})
	}
	sort.Slice(listings, func(i, j int) bool {
		return listings[i].Code < listings[j].Code
	})

	if err := httputil.WriteSuccess(w, listings); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "error", err)
	}
}

func (h *PromoHandler) writeJSON(w http.ResponseWriter, status int, resp validateResponse) {
	if err := httputil.WriteJSON(w, status, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Validate", "error", err)
	}
}

func (h *PromoHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/promo/validate", h.Validate)
	router.GET("/api/v1/promo/codes", h.List)
}
