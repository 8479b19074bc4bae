package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cart     CartConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Observ   ObservabilityConfig
	Business BusinessConfig
}

type ServerConfig struct {
	Host     string
	Port     string
	Env      string
	LogLevel string
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

type DatabaseConfig struct {
	// URL is either a SQLite file path (the default) or a postgres:// URL.
	URL string
}

// Cart store backends.
const (
	CartStoreMemory = "memory"
	CartStoreRedis  = "redis"
)

type CartConfig struct {
	Store string
	TTL   time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	TopicSale     string
	ConsumerGroup string
}

type ObservabilityConfig struct {
	JaegerEndpoint string
}

type BusinessConfig struct {
	StoreName          string
	MaxLineQuantity    int
	RevenueTrendMonths int
	ReceiptDir         string
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB := getEnvInt("REDIS_DB", 0)
	cartTTL := getEnvInt("CART_TTL_MINUTES", 120)

	cfg := &Config{
		Server: ServerConfig{
			Host:     getEnv("HOST", "127.0.0.1"),
			Port:     getEnv("PORT", "8080"),
			Env:      getEnv("ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", ""),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", "pos.db"),
		},
		Cart: CartConfig{
			Store: strings.ToLower(getEnv("CART_STORE", CartStoreMemory)),
			TTL:   time.Duration(cartTTL) * time.Minute,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Enabled:       getEnvBool("KAFKA_ENABLED", false),
			Brokers:       splitCSV(getEnv("KAFKA_BROKERS", "localhost:9092")),
			TopicSale:     getEnv("KAFKA_TOPIC_SALE_EVENTS", "sale-events"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "receipt-worker-group"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", ""),
		},
		Business: BusinessConfig{
			StoreName:          getEnv("STORE_NAME", "POS Desktop"),
			MaxLineQuantity:    getEnvInt("MAX_LINE_QUANTITY", 100),
			RevenueTrendMonths: getEnvInt("REVENUE_TREND_MONTHS", 3),
			ReceiptDir:         getEnv("RECEIPT_DIR", "receipts"),
		},
	}

	if cfg.Business.MaxLineQuantity <= 0 {
		cfg.Business.MaxLineQuantity = 100
	}
	if cfg.Business.RevenueTrendMonths <= 0 {
		cfg.Business.RevenueTrendMonths = 3
	}

	log.Printf("Config loaded: env=%s, addr=%s, db=%s", cfg.Server.Env, cfg.Server.Addr(), cfg.Database.URL)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvBool(key string, defaultVal bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return b
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
