package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns a GORM-compatible postgres connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// KafkaConfig holds Kafka broker settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// JWTConfig holds token verification settings.
type JWTConfig struct {
	Secret string
}

// TwilioConfig holds outbound SMS settings.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// ServiceConfig holds all configuration for the dispatch service.
type ServiceConfig struct {
	Port         string
	AppEnv       string
	ReportingTZ  string
	DBConfig     DatabaseConfig
	KafkaConfig  KafkaConfig
	JWTConfig    JWTConfig
	TwilioConfig TwilioConfig
}

// Load reads configuration from the environment. A local .env file is
// loaded first when present so development machines need no exports.
func Load() (*ServiceConfig, error) {
	_ = godotenv.Load()

	cfg := &ServiceConfig{
		Port:        ":" + getEnv("DISPATCH_SERVICE_PORT", "8080"),
		AppEnv:      getEnv("APP_ENV", "development"),
		ReportingTZ: getEnv("DISPATCH_REPORTING_TZ", "Local"),
		DBConfig: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "dispatch"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			GroupPrefix: getEnv("KAFKA_GROUP_PREFIX", ""),
		},
		JWTConfig: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		TwilioConfig: TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber: getEnv("TWILIO_PHONE_NUMBER", ""),
		},
	}

	if cfg.AppEnv != "development" && cfg.JWTConfig.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required outside development")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
