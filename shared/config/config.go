package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// AppConfig holds everything the API service reads from the environment.
type AppConfig struct {
	Port           string
	JWTSecret      string
	JWTExpiration  time.Duration
	CSRFSecret     string
	CSRFTokenTTL   time.Duration
	KafkaBroker    string
	AuditTopic     string
	S3Region       string
	S3LogoBucket   string
	LogoURLPrefix  string
	BcryptCost     int
	CookieSecure   bool
}

// LoadAppConfig reads the application configuration from environment
// variables, applying defaults suitable for local development.
func LoadAppConfig() *AppConfig {
	return &AppConfig{
		Port:          getEnv("API_PORT", "8080"),
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTExpiration: getDurationEnv("JWT_EXPIRATION", 24*time.Hour),
		CSRFSecret:    getEnv("CSRF_SECRET", "dev-csrf-secret-change-me"),
		CSRFTokenTTL:  getDurationEnv("CSRF_TOKEN_TTL", 15*time.Minute),
		KafkaBroker:   getEnv("KAFKA_BROKER", "localhost:9092"),
		AuditTopic:    getEnv("AUDIT_TOPIC", "audit-events"),
		S3Region:      getEnv("AWS_REGION", "us-east-1"),
		S3LogoBucket:  getEnv("S3_LOGO_BUCKET", "dugout-team-logos"),
		LogoURLPrefix: getEnv("LOGO_URL_PREFIX", ""),
		BcryptCost:    getIntEnv("BCRYPT_COST", 10),
		CookieSecure:  getEnv("COOKIE_SECURE", "false") == "true",
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
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

// Validate rejects configurations that cannot possibly work in production.
func (c *AppConfig) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.CSRFSecret == "" {
		return fmt.Errorf("CSRF_SECRET must not be empty")
	}
	return nil
}
