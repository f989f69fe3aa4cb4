package config

import "time"

type Config struct {
	AppName                       string   `env:"APP_NAME" env-default:"clover-api"`
	Port                          int      `env:"PORT" env-default:"3004"`
	LogLevel                      string   `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs                    bool     `env:"PRETTY_LOGS" env-default:"false"`
	HttpServerWriteTimeoutSeconds int      `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerReadTimeoutSeconds  int      `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int      `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"10"`
	MaxHeaderBytes                int      `env:"HTTP_SERVER_MAX_HEADER_BYTES" env-default:"64000"` // 64KB
	ReadHeaderTimeoutSeconds      int      `env:"HTTP_SERVER_READ_HEADER_TIMEOUT_SECONDS" env-default:"10"`
	AllowOrigins                  []string `env:"HTTP_SERVER_ALLOW_ORIGINS" env-default:"*"`
	AllowMethods                  []string `env:"HTTP_SERVER_ALLOW_METHODS" env-default:"GET,POST,PUT,DELETE"`
	StartupMaxAttempts            int      `env:"STARTUP_MAX_ATTEMPTS" env-default:"5"`

	// PostgreSQL (company directory, documents, stored matches)
	DatabaseDriver                string        `env:"DB_DRIVER" env-default:"postgres"`
	DatabaseHost                  string        `env:"DB_HOST" env-default:""`
	DatabasePort                  string        `env:"DB_PORT" env-default:"5432"`
	DatabaseUserName              string        `env:"DB_USER_NAME" env-default:""`
	DatabasePassword              string        `env:"DB_PASSWORD" env-default:""`
	DatabaseName                  string        `env:"DB_NAME" env-default:"clover"`
	DatabaseSSLMode               string        `env:"DB_SQL_MODE" env-default:"disable"`
	DatabaseReconnectRetryCount   int           `env:"DB_RECONNECT_RETRY_COUNT" env-default:"3"`
	DatabaseMaxOpenConns          int           `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	DatabaseMaxIdleConns          int           `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	DatabaseConnMaxLifetime       time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"10s"`
	DatabaseMigrationFolderPath   string        `env:"DB_MIGRATION_FOLDER_PATH" env-default:"db/pg"`
	DatabaseMigrationVersion      int           `env:"DB_MIGRATION_VERSION" env-default:"0"`
	DatabaseMigrationForce        int           `env:"DB_MIGRATION_FORCE" env-default:"0"`
	DatabaseMigrationAutoRollback bool          `env:"DB_MIGRATION_AUTO_ROLLBACK" env-default:"true"`

	// Graph Database (deal graph)
	GraphDBHost     string `env:"GRAPH_DB_HOST" env-default:"localhost"`
	GraphDBPort     int    `env:"GRAPH_DB_PORT" env-default:"7687"`
	GraphDBUser     string `env:"GRAPH_DB_USER" env-default:""`
	GraphDBPassword string `env:"GRAPH_DB_PASSWORD" env-default:""`
	GraphDBEnabled  bool   `env:"GRAPH_DB_ENABLED" env-default:"true"`

	// Redis (market data response cache)
	RedisAddr     string        `env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD" env-default:""`
	RedisDB       int           `env:"REDIS_DB" env-default:"0"`
	RedisCacheTTL time.Duration `env:"REDIS_CACHE_TTL" env-default:"6h"`

	// Market data provider
	MarketDataBaseURL string        `env:"MARKET_DATA_BASE_URL" env-default:"https://api.polygon.io"`
	MarketDataAPIKey  string        `env:"MARKET_DATA_API_KEY" env-default:""`
	MarketDataTimeout time.Duration `env:"MARKET_DATA_TIMEOUT" env-default:"10s"`

	// Kafka Producer settings
	KafkaBrokers      []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaOutputTopic  string   `env:"KAFKA_OUTPUT_TOPIC" env-default:"deal-events"`
	KafkaBatchSize    int      `env:"KAFKA_BATCH_SIZE" env-default:"100"`
	KafkaBatchTimeout int      `env:"KAFKA_BATCH_TIMEOUT_MS" env-default:"100"`
	KafkaRequiredAcks int      `env:"KAFKA_REQUIRED_ACKS" env-default:"1"`
	KafkaCompression  string   `env:"KAFKA_COMPRESSION" env-default:"snappy"`
	KafkaEnabled      bool     `env:"KAFKA_ENABLED" env-default:"true"`

	// Matching
	MinMatchScore      float64 `env:"MIN_MATCH_SCORE" env-default:"0.3"`
	MaxMatchesPerQuery int     `env:"MAX_MATCHES_PER_QUERY" env-default:"50"`

	// Tracing
	TracingEnabled bool   `env:"TRACING_ENABLED" env-default:"false"`
	OTLPEndpoint   string `env:"OTLP_ENDPOINT" env-default:"localhost:4317"`
	OTLPProtocol   string `env:"OTLP_PROTOCOL" env-default:"grpc"`
	OTLPInsecure   bool   `env:"OTLP_INSECURE" env-default:"true"`
}
