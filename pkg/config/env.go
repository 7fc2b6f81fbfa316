package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvRateLimitRPS   = "RATE_LIMIT_RPS"
	EnvRateLimitBurst = "RATE_LIMIT_BURST"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvRedisAddr      = "REDIS_ADDR"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvEquipmentServiceURL = "EQUIPMENT_SERVICE_URL"
	EnvExternalServiceURL  = "EXTERNAL_SERVICE_URL"
	EnvOutboundTimeout     = "OUTBOUND_TIMEOUT"

	EnvRentalBaseFee           = "RENTAL_BASE_FEE"
	EnvRentalFreeMinutes       = "RENTAL_FREE_MINUTES"
	EnvRentalExtraBlockMinutes = "RENTAL_EXTRA_BLOCK_MINUTES"
	EnvRentalExtraBlockFee     = "RENTAL_EXTRA_BLOCK_FEE"
	EnvCheckoutLockTTL         = "CHECKOUT_LOCK_TTL"

	EnvSendGridAPIKey      = "SENDGRID_API_KEY"
	EnvMailFrom            = "MAIL_FROM"
	EnvChargeQueueSchedule = "CHARGE_QUEUE_SCHEDULE"
)
