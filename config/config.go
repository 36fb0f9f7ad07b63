package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string
	AppMode string

	// InstanceID tags everything this process publishes on the backbone.
	InstanceID string

	StorageDriver string
	DatabaseURL   string
	DBHost        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPort        string

	JWTSecret    string
	JWTExpiryMin int

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	BackboneDriver string
	NATSURL        string
	PresenceDriver string

	HistoryCacheTTL time.Duration
	ProfileCacheTTL time.Duration

	// RelayNewMessages makes the relay rebroadcast new_message events that
	// originated on other instances.
	RelayNewMessages bool

	MessageRateLimit   int
	MessageRateWindow  time.Duration
	SocketEventsPerSec float64
	SocketEventBurst   int

	S3Region     string
	S3Bucket     string
	S3AccessKey  string
	S3SecretKey  string
	S3Endpoint   string
	S3PublicBase string
	S3PresignTTL time.Duration
}

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	hostname, _ := os.Hostname()
	defaultInstance := hostname + "-" + uuid.NewString()[:8]

	return &Config{
		AppPort:    getEnv("APP_PORT", "8080"),
		AppMode:    getEnv("APP_MODE", "debug"),
		InstanceID: getEnv("INSTANCE_ID", defaultInstance),

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", "postgres")),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "journey_chat"),
		DBPort:        getEnv("DB_PORT", "5432"),

		JWTSecret:    getEnv("JWT_SECRET", "change-me"),
		JWTExpiryMin: getEnvAsInt("JWT_EXPIRY_MIN", 15),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		BackboneDriver: strings.ToLower(getEnv("BACKBONE_DRIVER", "redis")),
		NATSURL:        getEnv("NATS_URL", "nats://localhost:4222"),
		PresenceDriver: strings.ToLower(getEnv("PRESENCE_DRIVER", "memory")),

		HistoryCacheTTL: getEnvAsDuration("HISTORY_CACHE_TTL", 5*time.Minute),
		ProfileCacheTTL: getEnvAsDuration("PROFILE_CACHE_TTL", 30*time.Minute),

		RelayNewMessages: getEnvAsBool("RELAY_NEW_MESSAGES", true),

		MessageRateLimit:   getEnvAsInt("MESSAGE_RATE_LIMIT", 60),
		MessageRateWindow:  getEnvAsDuration("MESSAGE_RATE_WINDOW", time.Minute),
		SocketEventsPerSec: getEnvAsFloat("SOCKET_EVENTS_PER_SEC", 10),
		SocketEventBurst:   getEnvAsInt("SOCKET_EVENT_BURST", 20),

		S3Region:     getEnv("S3_REGION", ""),
		S3Bucket:     getEnv("S3_BUCKET", ""),
		S3AccessKey:  getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:  getEnv("S3_SECRET_KEY", ""),
		S3Endpoint:   getEnv("S3_ENDPOINT", ""),
		S3PublicBase: getEnv("S3_PUBLIC_BASE", ""),
		S3PresignTTL: getEnvAsDuration("S3_PRESIGN_TTL", 15*time.Minute),
	}
}

// PostgresDSN returns DATABASE_URL when set, otherwise a DSN built from the
// DB_* variables.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// S3Enabled reports whether attachment keys can be resolved through S3.
func (c *Config) S3Enabled() bool {
	return c.S3Region != "" && c.S3Bucket != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return fallback
}
