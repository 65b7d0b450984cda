package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string

	// AI generation configuration
	LLMAPIKey      string
	LLMAPIURL      string
	ImageAPIKey    string
	ImageAPIURL    string
	S3BucketName   string
	AWSRegion      string
	ImagesDisabled bool
}

// LoadConfig builds a Config from environment variables. In development a
// local .env file is loaded first so the server runs without exported vars.
func LoadConfig() (*Config, error) {
	if IsDevelopment() {
		if err := godotenv.Load(); err != nil {
			log.Printf("[Config] no .env file loaded: %v", err)
		}
	}

	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		ServerHost: getEnv("SERVER_HOST", "0.0.0.0"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "tastoria"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),

		RedisURL:      os.Getenv("REDIS_URL"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		LLMAPIKey:    os.Getenv("DEEPSEEK_API_KEY"),
		LLMAPIURL:    os.Getenv("DEEPSEEK_API_URL"),
		ImageAPIKey:  os.Getenv("OPENAI_API_KEY"),
		ImageAPIURL:  os.Getenv("OPENAI_IMAGE_API_URL"),
		S3BucketName: getEnv("S3_BUCKET_NAME", "tastoria-recipe-images"),
		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB %q: %w", v, err)
		}
		cfg.RedisDB = db
	}
	cfg.ImagesDisabled = os.Getenv("DISABLE_IMAGE_GENERATION") == "true"

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DBUser == "" {
		return fmt.Errorf("DB_USER environment variable is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if IsProduction() && c.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD environment variable is required in production")
	}
	return nil
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// RedisAddr returns the host:port address for the cache server.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
