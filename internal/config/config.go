package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported values for the backend selector keys.
const (
	EventBusMemory   = "memory"
	EventBusRabbitMQ = "rabbitmq"
	EventBusKafka    = "kafka"

	StorageFirebase = "firebase"
	StorageMinIO    = "minio"

	TriggerSourceAPI       = "api"
	TriggerSourceFirestore = "firestore"
)

// Config holds all configuration for the application.
type Config struct {
	Port      string `mapstructure:"PORT"`
	GinMode   string `mapstructure:"GIN_MODE"`
	ClientURL string `mapstructure:"CLIENT_URL"`

	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	FirebaseStorageBucket            string `mapstructure:"FIREBASE_STORAGE_BUCKET"`

	StorageBackend string `mapstructure:"STORAGE_BACKEND"`
	MinIOEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinIOAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinIOSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinIOBucket    string `mapstructure:"MINIO_BUCKET"`
	MinIOUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`

	AnthropicAPIKey  string        `mapstructure:"ANTHROPIC_API_KEY"`
	LLMModel         string        `mapstructure:"LLM_MODEL"`
	LLMMaxTokens     int64         `mapstructure:"LLM_MAX_TOKENS"`
	LLMMaxConcurrent int64         `mapstructure:"LLM_MAX_CONCURRENT"`
	AIRateLimit      time.Duration `mapstructure:"AI_RATE_LIMIT_WINDOW"`

	EventBus           string   `mapstructure:"EVENT_BUS"`
	RabbitMQURL        string   `mapstructure:"RABBITMQ_URL"`
	KafkaBrokers       []string `mapstructure:"KAFKA_BROKERS"`
	KafkaGroupID       string   `mapstructure:"KAFKA_GROUP_ID"`
	TopicRatingWritten string   `mapstructure:"TOPIC_RATING_WRITTEN"`
	TopicOutfitDeleted string   `mapstructure:"TOPIC_OUTFIT_DELETED"`
	TriggerSource      string   `mapstructure:"TRIGGER_SOURCE"`

	RedisAddr          string        `mapstructure:"REDIS_ADDR"`
	RedisPassword      string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB            int           `mapstructure:"REDIS_DB"`
	SuggestionCacheTTL time.Duration `mapstructure:"SUGGESTION_CACHE_TTL"`

	ReconcileSchedule string `mapstructure:"RECONCILE_SCHEDULE"`
}

var keys = []string{
	"PORT", "GIN_MODE", "CLIENT_URL",
	"FIREBASE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS", "FIREBASE_SERVICE_ACCOUNT_JSON_BASE64", "FIREBASE_STORAGE_BUCKET",
	"STORAGE_BACKEND", "MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_BUCKET", "MINIO_USE_SSL",
	"ANTHROPIC_API_KEY", "LLM_MODEL", "LLM_MAX_TOKENS", "LLM_MAX_CONCURRENT", "AI_RATE_LIMIT_WINDOW",
	"EVENT_BUS", "RABBITMQ_URL", "KAFKA_BROKERS", "KAFKA_GROUP_ID", "TOPIC_RATING_WRITTEN", "TOPIC_OUTFIT_DELETED", "TRIGGER_SOURCE",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "SUGGESTION_CACHE_TTL",
	"RECONCILE_SCHEDULE",
}

// LoadConfig loads configuration from environment variables using Viper.
func LoadConfig() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("STORAGE_BACKEND", StorageFirebase)
	v.SetDefault("LLM_MODEL", "claude-sonnet-4-5")
	v.SetDefault("LLM_MAX_TOKENS", 1024)
	v.SetDefault("LLM_MAX_CONCURRENT", 4)
	v.SetDefault("AI_RATE_LIMIT_WINDOW", time.Hour)
	v.SetDefault("EVENT_BUS", EventBusMemory)
	v.SetDefault("KAFKA_GROUP_ID", "fitcheck-aggregator")
	v.SetDefault("TOPIC_RATING_WRITTEN", "rating.written")
	v.SetDefault("TOPIC_OUTFIT_DELETED", "outfit.deleted")
	v.SetDefault("TRIGGER_SOURCE", TriggerSourceAPI)
	v.SetDefault("SUGGESTION_CACHE_TTL", 10*time.Minute)
	v.SetDefault("RECONCILE_SCHEDULE", "@every 6h")

	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) validate() error {
	if cfg.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}
	if cfg.AnthropicAPIKey == "" {
		return errors.New("ANTHROPIC_API_KEY is required")
	}
	if cfg.AIRateLimit <= 0 {
		return errors.New("AI_RATE_LIMIT_WINDOW must be positive")
	}

	switch cfg.StorageBackend {
	case StorageFirebase:
		if cfg.FirebaseStorageBucket == "" {
			return errors.New("FIREBASE_STORAGE_BUCKET is required for the firebase storage backend")
		}
	case StorageMinIO:
		if cfg.MinIOEndpoint == "" || cfg.MinIOBucket == "" {
			return errors.New("MINIO_ENDPOINT and MINIO_BUCKET are required for the minio storage backend")
		}
	default:
		return errors.New("unsupported STORAGE_BACKEND: " + cfg.StorageBackend)
	}

	switch cfg.EventBus {
	case EventBusMemory:
	case EventBusRabbitMQ:
		if cfg.RabbitMQURL == "" {
			return errors.New("RABBITMQ_URL is required for the rabbitmq event bus")
		}
	case EventBusKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required for the kafka event bus")
		}
	default:
		return errors.New("unsupported EVENT_BUS: " + cfg.EventBus)
	}

	if cfg.TriggerSource != TriggerSourceAPI && cfg.TriggerSource != TriggerSourceFirestore {
		return errors.New("unsupported TRIGGER_SOURCE: " + cfg.TriggerSource)
	}
	return nil
}
