package config

import (
	"time"

	"experia/pkg/model"
)

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "experia"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultDefaultSlotCapacity = model.DefaultSlotCapacity

	DefaultPaginationLimit = 100
)

// DefaultPromoCatalog returns the built-in promo codes. The catalog is a
// plain configuration value; nothing about it is persisted.
func DefaultPromoCatalog() model.PromoCatalog {
	return model.PromoCatalog{
		"SAVE10": {
			Type:        model.PromoTypePercent,
			Value:       10,
			MinAmount:   500,
			Description: "Get 10% off on orders above 500",
		},
		"FLAT100": {
			Type:        model.PromoTypeFlat,
			Value:       100,
			MinAmount:   1000,
			Description: "Get 100 off on orders above 1000",
		},
		"WELCOME20": {
			Type:        model.PromoTypePercent,
			Value:       20,
			MinAmount:   0,
			Description: "Welcome offer - Get 20% off on your first booking",
		},
	}
}
