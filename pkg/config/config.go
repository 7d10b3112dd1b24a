package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"crafthub/pkg/client"
	"crafthub/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type Config struct {
	MongoURI              string
	MongoDatabaseName     string
	MongoConnTimeout      time.Duration
	MongoOperationTimeout time.Duration

	Port string

	JWTSecret string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	BookingHoldDuration time.Duration
	SweepSchedule       string
	SweepBatchSize      int
	SweepLockTTL        time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	EventsBroker       string
	BookingEventsTopic string
	PaymentsTopic      string
	PaymentsGroupID    string
	PaymentsDLQTopic   string
	RabbitMQURL        string

	PaymentsWebhookSecret string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:              getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName:     getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:      getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),
		MongoOperationTimeout: getEnvDuration(EnvMongoOperationTimeout, DefaultMongoOperationTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		JWTSecret: getEnvStr(EnvJWTSecret, ""),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		BookingHoldDuration: getEnvDuration(EnvBookingHoldDuration, DefaultBookingHoldDuration),
		SweepSchedule:       getEnvStr(EnvSweepSchedule, DefaultSweepSchedule),
		SweepBatchSize:      getEnvNum(EnvSweepBatchSize, DefaultSweepBatchSize),
		SweepLockTTL:        getEnvDuration(EnvSweepLockTTL, DefaultSweepLockTTL),

		RedisAddr:     getEnvStr(EnvRedisAddr, ""),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, DefaultRedisDB),

		EventsBroker:       strings.ToLower(getEnvStr(EnvEventsBroker, DefaultEventsBroker)),
		BookingEventsTopic: getEnvStr(EnvBookingEventsTopic, DefaultBookingEventsTopic),
		PaymentsTopic:      getEnvStr(EnvPaymentsTopic, DefaultPaymentsTopic),
		PaymentsGroupID:    getEnvStr(EnvPaymentsGroupID, DefaultPaymentsGroupID),
		PaymentsDLQTopic:   getEnvStr(EnvPaymentsDLQTopic, DefaultPaymentsDLQTopic),
		RabbitMQURL:        getEnvStr(EnvRabbitMQURL, DefaultRabbitMQURL),

		PaymentsWebhookSecret: getEnvStr(EnvPaymentsWebhookSecret, ""),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
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

// SetRedis connects Redis only when an address is configured.
func (cfg *Config) SetRedis() {
	if cfg.RedisAddr == "" {
		cfg.Log.Info("Redis not configured, sweeper runs without a distributed lock")
		return
	}
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}
	if len(cfg.JWTSecret) < 16 {
		errors = append(errors, "JWTSecret must be set and at least 16 characters long")
	}

	for name, d := range map[string]time.Duration{
		"MongoConnTimeout":      cfg.MongoConnTimeout,
		"MongoOperationTimeout": cfg.MongoOperationTimeout,
		"RateLimitWindow":       cfg.RateLimitWindow,
		"RequestTimeout":        cfg.RequestTimeout,
		"IdempotencyTTL":        cfg.IdempotencyTTL,
		"ReadTimeout":           cfg.ReadTimeout,
		"WriteTimeout":          cfg.WriteTimeout,
		"IdleTimeout":           cfg.IdleTimeout,
		"ShutdownTimeout":       cfg.ShutdownTimeout,
		"BookingHoldDuration":   cfg.BookingHoldDuration,
		"SweepLockTTL":          cfg.SweepLockTTL,
	} {
		if d <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", name, d))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.SweepBatchSize <= 0 {
		errors = append(errors, fmt.Sprintf("SweepBatchSize must be positive, got: %d", cfg.SweepBatchSize))
	}
	if _, err := cron.ParseStandard(cfg.SweepSchedule); err != nil {
		errors = append(errors, fmt.Sprintf("SweepSchedule is not a valid cron spec (%s): %v", cfg.SweepSchedule, err))
	}

	switch cfg.EventsBroker {
	case EventsBrokerKafka, EventsBrokerRabbitMQ, EventsBrokerNone:
	default:
		errors = append(errors, fmt.Sprintf("EventsBroker must be one of kafka, rabbitmq, none, got: %s", cfg.EventsBroker))
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
		"mongo_uri", redactURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"mongo_operation_timeout", cfg.MongoOperationTimeout,
		"port", cfg.Port,
		"jwt_secret_set", cfg.JWTSecret != "",
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"booking_hold_duration", cfg.BookingHoldDuration,
		"sweep_schedule", cfg.SweepSchedule,
		"sweep_batch_size", cfg.SweepBatchSize,
		"sweep_lock_ttl", cfg.SweepLockTTL,
		"redis_addr", cfg.RedisAddr,
		"events_broker", cfg.EventsBroker,
		"booking_events_topic", cfg.BookingEventsTopic,
		"payments_topic", cfg.PaymentsTopic,
		"rabbitmq_url", redactURI(cfg.RabbitMQURL),
		"payments_webhook_enabled", cfg.PaymentsWebhookSecret != "",
	)
}

func redactURI(uri string) string {
	credentialRegex := regexp.MustCompile(`^([a-z+]+://)[^:/@]+:[^@]+@`)
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
