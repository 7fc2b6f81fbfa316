package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "bikeshare"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRPS   = 20
	DefaultRateLimitBurst = 40

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultEquipmentServiceURL = "http://localhost:8081"
	DefaultExternalServiceURL  = "http://localhost:8082"
	DefaultOutboundTimeout     = 10 * time.Second

	DefaultRentalBaseFee           = 10.00
	DefaultRentalFreeMinutes       = 120
	DefaultRentalExtraBlockMinutes = 30
	DefaultRentalExtraBlockFee     = 5.00
	DefaultCheckoutLockTTL         = 1 * time.Minute

	DefaultMailFrom            = "no-reply@bicicletario.local"
	DefaultChargeQueueSchedule = "0 */10 * * * *"

	DefaultPageSize        = 10
	DefaultPaginationLimit = 100
)
