package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション設定を表す
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Booking   BookingConfig
	JWT       JWTConfig
	RabbitMQ  RabbitMQConfig
	Telemetry TelemetryConfig
	Metrics   MetricsConfig
}

// AppConfig はアプリケーション全体の設定
type AppConfig struct {
	Name     string
	Env      string
	LogLevel string
}

// ServerConfig はサーバー設定
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig はデータベース設定
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MaxOpenConns   int
	MaxIdleConns   int
	MigrationsPath string
}

// RedisConfig はRedis設定
// Enabled が false の場合は分散ロックを使わない
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// BookingConfig は予約エンジンの設定
type BookingConfig struct {
	// Timezone は予約時刻を正規化する基準タイムゾーン
	Timezone          string
	ReconcileInterval time.Duration
	LockTTL           time.Duration
	LockRetries       int
	LockRetryDelay    time.Duration
}

// JWTConfig はアクセストークン検証の設定
type JWTConfig struct {
	Secret string
	Issuer string
}

// RabbitMQConfig は管理者通知の設定
// URL が空の場合は通知しない
type RabbitMQConfig struct {
	URL         string
	TicketQueue string
	DialTimeout time.Duration
}

// TelemetryConfig はトレース設定
type TelemetryConfig struct {
	Enabled       bool
	CollectorAddr string
	SampleRatio   float64
}

// MetricsConfig は /metrics の Basic 認証設定
type MetricsConfig struct {
	User     string
	Password string
}

// IsEnabled は認証が有効かどうかを返す
func (c *MetricsConfig) IsEnabled() bool {
	return c.User != "" && c.Password != ""
}

// Load は .env と環境変数から設定を読み込む
// .env が存在しない場合は環境変数のみを使う
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv は環境変数から設定を読み込む
func FromEnv() *Config {
	return &Config{
		App: AppConfig{
			Name:     getEnv("APP_NAME", "seat-booking"),
			Env:      getEnv("APP_ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", ""),
		},
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "seat_booking"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:   getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:   getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Booking: BookingConfig{
			Timezone:          getEnv("BOOKING_TIMEZONE", "Europe/Moscow"),
			ReconcileInterval: getDurationEnv("RECONCILE_INTERVAL", time.Minute),
			LockTTL:           getDurationEnv("BOOKING_LOCK_TTL", 10*time.Second),
			LockRetries:       getIntEnv("BOOKING_LOCK_RETRIES", 20),
			LockRetryDelay:    getDurationEnv("BOOKING_LOCK_RETRY_DELAY", 50*time.Millisecond),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Issuer: getEnv("JWT_ISSUER", ""),
		},
		RabbitMQ: RabbitMQConfig{
			URL:         getEnv("RABBITMQ_URL", ""),
			TicketQueue: getEnv("RABBITMQ_TICKET_QUEUE", "tickets.created"),
			DialTimeout: getDurationEnv("RABBITMQ_DIAL_TIMEOUT", 2*time.Second),
		},
		Telemetry: TelemetryConfig{
			Enabled:       getBoolEnv("OTEL_ENABLED", false),
			CollectorAddr: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRatio:   getFloatEnv("OTEL_SAMPLE_RATIO", 1.0),
		},
		Metrics: MetricsConfig{
			User:     getEnv("METRICS_USER", ""),
			Password: getEnv("METRICS_PASSWORD", ""),
		},
	}
}

// Validate は起動に必須の設定を確認する
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET が設定されていません")
	}
	if c.Booking.ReconcileInterval <= 0 {
		return fmt.Errorf("RECONCILE_INTERVAL は正の値である必要があります")
	}
	return nil
}

// DSN はPostgreSQL接続文字列を返す
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
