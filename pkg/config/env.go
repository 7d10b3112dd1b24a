package config

const (
	EnvMongoURI              = "MONGO_URI"
	EnvMongoDatabaseName     = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout      = "MONGO_CONN_TIMEOUT"
	EnvMongoOperationTimeout = "MONGO_OPERATION_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvJWTSecret = "JWT_SECRET"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvBookingHoldDuration = "BOOKING_HOLD_DURATION"
	EnvSweepSchedule       = "SWEEP_SCHEDULE"
	EnvSweepBatchSize      = "SWEEP_BATCH_SIZE"
	EnvSweepLockTTL        = "SWEEP_LOCK_TTL"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvEventsBroker          = "EVENTS_BROKER"
	EnvBookingEventsTopic    = "BOOKING_EVENTS_TOPIC"
	EnvPaymentsTopic         = "PAYMENTS_TOPIC"
	EnvPaymentsGroupID       = "PAYMENTS_GROUP_ID"
	EnvPaymentsDLQTopic      = "PAYMENTS_DLQ_TOPIC"
	EnvRabbitMQURL           = "RABBITMQ_URL"
	EnvPaymentsWebhookSecret = "PAYMENTS_WEBHOOK_SECRET"
)
