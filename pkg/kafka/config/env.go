package kafka_config

const (
	EnvKafkaBrokers = "KAFKA_BROKERS"

	// booking event producer
	EnvKafkaProducerMaxAttempts  = "KAFKA_PRODUCER_MAX_ATTEMPTS"
	EnvKafkaProducerBatchTimeout = "KAFKA_PRODUCER_BATCH_TIMEOUT"
	EnvKafkaProducerRequireAcks  = "KAFKA_PRODUCER_REQUIRE_ACKS"
	EnvKafkaProducerCompression  = "KAFKA_PRODUCER_COMPRESSION"

	// payments consumer
	EnvKafkaConsumerMaxWait    = "KAFKA_CONSUMER_MAX_WAIT"
	EnvKafkaConsumerMaxRetries = "KAFKA_CONSUMER_MAX_RETRIES"

	EnvKafkaEnableMiddleware = "KAFKA_ENABLE_MIDDLEWARE"
)
