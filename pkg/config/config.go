package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"time"

	"bikeshare/pkg/client"
	"bikeshare/pkg/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRPS   int
	RateLimitBurst int

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	RedisAddr      string
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	EquipmentServiceURL string
	ExternalServiceURL  string
	OutboundTimeout     time.Duration

	RentalBaseFee           float64
	RentalFreeMinutes       int
	RentalExtraBlockMinutes int
	RentalExtraBlockFee     float64
	CheckoutLockTTL         time.Duration

	SendGridAPIKey      string
	MailFrom            string
	ChargeQueueSchedule string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRPS:   getEnvNum(EnvRateLimitRPS, DefaultRateLimitRPS),
		RateLimitBurst: getEnvNum(EnvRateLimitBurst, DefaultRateLimitBurst),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		RedisAddr:      getEnvStr(EnvRedisAddr, ""),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		EquipmentServiceURL: getEnvStr(EnvEquipmentServiceURL, DefaultEquipmentServiceURL),
		ExternalServiceURL:  getEnvStr(EnvExternalServiceURL, DefaultExternalServiceURL),
		OutboundTimeout:     getEnvDuration(EnvOutboundTimeout, DefaultOutboundTimeout),

		RentalBaseFee:           getEnvFloat(EnvRentalBaseFee, DefaultRentalBaseFee),
		RentalFreeMinutes:       getEnvNum(EnvRentalFreeMinutes, DefaultRentalFreeMinutes),
		RentalExtraBlockMinutes: getEnvNum(EnvRentalExtraBlockMinutes, DefaultRentalExtraBlockMinutes),
		RentalExtraBlockFee:     getEnvFloat(EnvRentalExtraBlockFee, DefaultRentalExtraBlockFee),
		CheckoutLockTTL:         getEnvDuration(EnvCheckoutLockTTL, DefaultCheckoutLockTTL),

		SendGridAPIKey:      getEnvStr(EnvSendGridAPIKey, ""),
		MailFrom:            getEnvStr(EnvMailFrom, DefaultMailFrom),
		ChargeQueueSchedule: getEnvStr(EnvChargeQueueSchedule, DefaultChargeQueueSchedule),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    getEnvStr(EnvLogFormat, logger.JSON),
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"OutboundTimeout", cfg.OutboundTimeout},
		{"CheckoutLockTTL", cfg.CheckoutLockTTL},
	}
	for _, d := range durations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}

	if cfg.RateLimitRPS <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRPS must be positive, got: %d", cfg.RateLimitRPS))
	}
	if cfg.RateLimitBurst <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitBurst must be positive, got: %d", cfg.RateLimitBurst))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	for name, raw := range map[string]string{
		"EquipmentServiceURL": cfg.EquipmentServiceURL,
		"ExternalServiceURL":  cfg.ExternalServiceURL,
	} {
		if u, err := url.Parse(raw); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errors = append(errors, fmt.Sprintf("%s must be an http(s) URL, got: %s", name, raw))
		}
	}

	if cfg.RentalBaseFee < 0 {
		errors = append(errors, fmt.Sprintf("RentalBaseFee cannot be negative, got: %.2f", cfg.RentalBaseFee))
	}
	if cfg.RentalFreeMinutes < 0 {
		errors = append(errors, fmt.Sprintf("RentalFreeMinutes cannot be negative, got: %d", cfg.RentalFreeMinutes))
	}
	if cfg.RentalExtraBlockMinutes <= 0 {
		errors = append(errors, fmt.Sprintf("RentalExtraBlockMinutes must be positive, got: %d", cfg.RentalExtraBlockMinutes))
	}
	if cfg.RentalExtraBlockFee < 0 {
		errors = append(errors, fmt.Sprintf("RentalExtraBlockFee cannot be negative, got: %.2f", cfg.RentalExtraBlockFee))
	}

	if cfg.ChargeQueueSchedule == "" {
		errors = append(errors, "ChargeQueueSchedule cannot be empty")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_rps", cfg.RateLimitRPS,
		"rate_limit_burst", cfg.RateLimitBurst,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"redis_set", cfg.RedisAddr != "",
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"equipment_service_url", cfg.EquipmentServiceURL,
		"external_service_url", cfg.ExternalServiceURL,
		"outbound_timeout", cfg.OutboundTimeout,
		"rental_base_fee", cfg.RentalBaseFee,
		"rental_free_minutes", cfg.RentalFreeMinutes,
		"rental_extra_block_minutes", cfg.RentalExtraBlockMinutes,
		"rental_extra_block_fee", cfg.RentalExtraBlockFee,
		"checkout_lock_ttl", cfg.CheckoutLockTTL,
		"sendgrid_key_set", cfg.SendGridAPIKey != "",
		"mail_from", cfg.MailFrom,
		"charge_queue_schedule", cfg.ChargeQueueSchedule,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log, cfg.ShutdownTimeout)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = DefaultPageSize
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
