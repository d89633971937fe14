package http

import (
	"net/http"
	"strconv"

	"experia/pkg/config"
	apperrors "experia/pkg/errors"
)

// ExtractPageLimit reads page/limit query parameters with 1-based page
// semantics. Defaults: page=1, limit=10 (clamped by config).
func ExtractPageLimit(r *http.Request) (int, int, error) {
	query := r.URL.Query()

	page := 1
	if s := query.Get("page"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return 0, 0, apperrors.InvalidInput("invalid page parameter: " + s)
		}
		page = v
	}

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}
	limit = config.NormalizePaginationLimit(limit)

	return page, limit, nil
}

// PageOffset converts 1-based page/limit to a store offset.
func PageOffset(page, limit int) int64 {
	return config.NormalizeOffset(int64(page-1) * int64(limit))
}
