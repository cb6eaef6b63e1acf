package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
)

// StoreBackend selects which History backend a build wires. Exactly one
// backend is composed per process; this is a deployment concern, never a
// runtime state machine.
type StoreBackend string

const (
	StoreLocal StoreBackend = "local"
	StoreMongo StoreBackend = "mongo"
)

type Config struct {
	App     AppConfig
	Server  ServerConfig
	Store   StoreConfig
	MongoDB MongoDBConfig
	Auth    AuthConfig
	Suggest SuggestConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	OTel    OTelConfig
}

type AppConfig struct {
	Name    string
	Version string
	Env     string
}

type ServerConfig struct {
	Port string
	Host string
}

type StoreConfig struct {
	Backend StoreBackend
	// LocalPath is the sqlite file backing the device-local history store.
	LocalPath string
}

type MongoDBConfig struct {
	URI      string
	Database string
}

type AuthConfig struct {
	// Enabled is implied by the mongo backend: account-scoped history needs
	// a session. The local backend runs anonymous and ignores these.
	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration
}

type SuggestConfig struct {
	Enabled bool
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// WritesPerMinute caps create/analyze calls per caller. Zero disables.
	WritesPerMinute int
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
	GroupID string
}

type OTelConfig struct {
	Enabled  bool
	Endpoint string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	cfg := &Config{
		App: AppConfig{
			Name:    GetEnv("APP_NAME", "shorten"),
			Version: GetEnv("APP_VERSION", "0.1.0"),
			Env:     GetEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: GetEnv("APP_PORT", "8080"),
			Host: GetEnv("APP_HOST", "localhost"),
		},
		Store: StoreConfig{
			Backend:   StoreBackend(GetEnv("STORE_BACKEND", string(StoreLocal))),
			LocalPath: GetEnv("LOCAL_STORE_PATH", "shorten.db"),
		},
		MongoDB: MongoDBConfig{
			URI:      GetEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: GetEnv("MONGODB_DATABASE", "shorten"),
		},
		Auth: AuthConfig{
			JWTSecret: GetEnv("JWT_SECRET", ""),
			JWTIssuer: GetEnv("JWT_ISSUER", "shorten"),
			JWTTTL:    GetEnvDuration("JWT_TTL", 12*time.Hour),
		},
		Suggest: SuggestConfig{
			Enabled: GetEnvBool("SUGGEST_ENABLED", true),
			BaseURL: GetEnv("SUGGEST_BASE_URL", "https://api.siliconflow.cn/v1"),
			APIKey:  GetEnv("SUGGEST_API_KEY", ""),
			Model:   GetEnv("SUGGEST_MODEL", "deepseek-ai/DeepSeek-V3.2"),
			Timeout: GetEnvDuration("SUGGEST_TIMEOUT", 20*time.Second),
		},
		Redis: RedisConfig{
			Addr:            GetEnv("REDIS_ADDR", ""),
			Password:        GetEnv("REDIS_PASSWORD", ""),
			DB:              GetEnvInt("REDIS_DB", 0),
			WritesPerMinute: GetEnvInt("WRITES_PER_MINUTE", 30),
		},
		Kafka: KafkaConfig{
			Enabled: GetEnvBool("KAFKA_ENABLED", false),
			Brokers: SplitCSV(GetEnv("KAFKA_BROKERS", "localhost:9092")),
			Topic:   GetEnv("KAFKA_TOPIC", "link-events"),
			GroupID: GetEnv("KAFKA_GROUP_ID", "shorten-events"),
		},
		OTel: OTelConfig{
			Enabled:  GetEnvBool("OTEL_ENABLED", false),
			Endpoint: GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
		},
	}

	switch cfg.Store.Backend {
	case StoreLocal, StoreMongo:
	default:
		return nil, fmt.Errorf("STORE_BACKEND must be %q or %q (got %q)", StoreLocal, StoreMongo, cfg.Store.Backend)
	}
	if cfg.Store.Backend == StoreMongo && cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required when STORE_BACKEND=%s", StoreMongo)
	}
	if cfg.Suggest.Enabled && cfg.Suggest.APIKey == "" {
		// Run with the analyzer unwired rather than failing startup.
		cfg.Suggest.Enabled = false
	}

	return cfg, nil
}
