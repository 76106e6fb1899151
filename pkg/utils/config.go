package utils

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Payment   PaymentConfig
	Booking   BookingConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type PaymentConfig struct {
	// SecretKey signs provider webhooks (HMAC-SHA512 over the raw body).
	SecretKey string
}

type BookingConfig struct {
	// AllocationRetries bounds how often a lost check-and-reserve race is
	// retried before surfacing a conflict.
	AllocationRetries int
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type CacheConfig struct {
	AvailabilityTTL time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("ALLOCATION_RETRIES", 3)
	viper.SetDefault("RATE_LIMIT_RPS", 10)
	viper.SetDefault("RATE_LIMIT_BURST", 20)
	viper.SetDefault("AVAILABILITY_CACHE_TTL_SECONDS", 15)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Payment: PaymentConfig{
			SecretKey: viper.GetString("PAYSTACK_SECRET_KEY"),
		},
		Booking: BookingConfig{
			AllocationRetries: viper.GetInt("ALLOCATION_RETRIES"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             viper.GetInt("RATE_LIMIT_BURST"),
		},
		Cache: CacheConfig{
			AvailabilityTTL: time.Duration(viper.GetInt("AVAILABILITY_CACHE_TTL_SECONDS")) * time.Second,
		},
	}

	return config, nil
}
