package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig
	Logger     LoggerConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Elastic    ElasticsearchConfig
	Pricing    PricingConfig
	Competitor CompetitorConfig
	Jobs       JobsConfig
}

type ServerConfig struct {
	AppEnv   string
	HTTPPort string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
}

type PricingConfig struct {
	// Strategy: "additive" or "max_component".
	Strategy string
	// DemandWindow: "ratchet" or "decay".
	DemandWindow string
	// DemandTie: level reported when current == previous ("medium" or "low").
	DemandTie string
	Cooldown  time.Duration
	// FloorRatio derives price_floor from default_price for imported
	// products without an explicit floor.
	FloorRatio float64
	// Workers is the recalculation pool size.
	Workers int
}

type CompetitorConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type JobsConfig struct {
	// Cron expressions for the scheduled jobs.
	DemandRollSchedule     string
	SurplusSweepSchedule   string
	CompetitorSyncSchedule string
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:   getEnv("APP_ENV", "development"),
			HTTPPort: getEnv("HTTP_PORT", ":8080"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5432"),
			User:            getEnv("POSTGRES_USER", "pricing"),
			Password:        getEnv("POSTGRES_PASSWORD", "pricing"),
			DBName:          getEnv("POSTGRES_DB", "pricing"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_TOPIC_REPRICE", "pricing.reprice"),
			GroupID: getEnv("KAFKA_GROUP_REPRICE", "repricer"),
		},
		Elastic: ElasticsearchConfig{
			Addresses: getEnvSlice("ELASTICSEARCH_ADDRESSES", []string{"http://localhost:9200"}),
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
		},
		Pricing: PricingConfig{
			Strategy:     getEnv("PRICING_STRATEGY", "additive"),
			DemandWindow: getEnv("PRICING_DEMAND_WINDOW", "ratchet"),
			DemandTie:    getEnv("PRICING_DEMAND_TIE", "medium"),
			Cooldown:     getEnvDuration("PRICING_COOLDOWN", 30*time.Minute),
			FloorRatio:   getEnvFloat("PRICING_FLOOR_RATIO", 0.5),
			Workers:      getEnvInt("PRICING_WORKERS", 4),
		},
		Competitor: CompetitorConfig{
			BaseURL: getEnv("COMPETITOR_BASE_URL", "https://sinatra-pricing-api.fly.dev"),
			APIKey:  getEnv("COMPETITOR_API_KEY", ""),
			Timeout: getEnvDuration("COMPETITOR_TIMEOUT", 15*time.Second),
		},
		Jobs: JobsConfig{
			DemandRollSchedule:     getEnv("JOBS_DEMAND_ROLL_SCHEDULE", "0 */2 * * *"),
			SurplusSweepSchedule:   getEnv("JOBS_SURPLUS_SWEEP_SCHEDULE", "0 0 * * *"),
			CompetitorSyncSchedule: getEnv("JOBS_COMPETITOR_SYNC_SCHEDULE", "30 */6 * * *"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.Split(value, ",")
	}
	return fallback
}
