package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	defaultCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"
)

type Config struct {
	Env       string
	Port      string
	GinMode   string
	LogFormat string
	LogLevel  string
	UploadDir string

	DB    DBConfig
	Redis RedisConfig

	CacheEnabled bool
	CacheTTL     time.Duration

	JWTSecret         string
	FirebaseProjectID string
	FirebaseServerKey string
	FCMEndpoint       string
	FirebaseCertsURL  string

	GreenAPIBaseURL    string
	GreenAPIInstanceID string
	GreenAPIToken      string

	QuotesBaseURL string
	RabbitMQURL   string

	RequireVerification bool
	WelcomeBonus        int
	ReminderInterval    time.Duration
	DailySummaryHour    int
}

type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN собирает строку подключения для драйвера postgres
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Load читает .env (если есть) и переменные окружения
func Load() *Config {
	// Отсутствие .env не ошибка: в контейнере всё приходит из окружения
	_ = godotenv.Load()

	return &Config{
		Env:       getEnv("APP_ENV", EnvDevelopment),
		Port:      getEnv("PORT", "8080"),
		GinMode:   getEnv("GIN_MODE", ""),
		LogFormat: getEnv("LOG_FORMAT", "console"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		UploadDir: getEnv("UPLOAD_DIR", "uploads"),

		DB: DBConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "corail"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 60)) * time.Minute,
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},

		CacheEnabled: getEnvBool("CACHE_ENABLED", true),
		CacheTTL:     time.Duration(getEnvInt("CACHE_TTL_SECONDS", 3600)) * time.Second,

		JWTSecret:         getEnv("JWT_SECRET", ""),
		FirebaseProjectID: getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseServerKey: getEnv("FIREBASE_SERVER_KEY", ""),
		FCMEndpoint:       getEnv("FCM_ENDPOINT", "https://fcm.googleapis.com/fcm/send"),
		FirebaseCertsURL:  getEnv("FIREBASE_CERTS_URL", defaultCertsURL),

		GreenAPIBaseURL:    getEnv("GREEN_API_BASE_URL", ""),
		GreenAPIInstanceID: getEnv("GREEN_API_INSTANCE_ID", ""),
		GreenAPIToken:      getEnv("GREEN_API_TOKEN", ""),

		QuotesBaseURL: getEnv("QUOTES_BASE_URL", "https://corail-quotes-web.vercel.app/q/"),
		RabbitMQURL:   getEnv("RABBITMQ_URL", ""),

		RequireVerification: getEnvBool("REQUIRE_VERIFICATION", true),
		WelcomeBonus:        getEnvInt("CREDITS_WELCOME_BONUS", 0),
		ReminderInterval:    time.Duration(getEnvInt("REMINDER_INTERVAL_SECONDS", 60)) * time.Second,
		DailySummaryHour:    getEnvInt("DAILY_SUMMARY_HOUR", 8),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val, err := strconv.Atoi(os.Getenv(key)); err == nil && val >= 0 {
		return val
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return val
	}
	return fallback
}
