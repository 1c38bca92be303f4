package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	JWTSecret      string
	DBPath         string
	ChainMode      string // mock or rpc
	ChainRPCURL    string
	ChainNetwork   string
	CheckInterval  time.Duration
	PaymentTimeout time.Duration
	TokenExpiry    time.Duration
}

var (
	AppConfig Config
)

func LoadConfig() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	AppConfig = Config{
		Port:           getEnvOrDefault("PORT", "3000"),
		JWTSecret:      mustGetEnv("JWT_SECRET"),
		DBPath:         getEnvOrDefault("DB_PATH", "paystream.db"),
		ChainMode:      getEnvOrDefault("CHAIN_MODE", "mock"),
		ChainRPCURL:    getEnvOrDefault("CHAIN_RPC_URL", "https://rpc.mnee.network"),
		ChainNetwork:   getEnvOrDefault("CHAIN_NETWORK", "ethereum"),
		CheckInterval:  getDurationOrDefault("SCHEDULER_INTERVAL", time.Hour),
		PaymentTimeout: getDurationOrDefault("PAYMENT_TIMEOUT", 30*time.Second),
		TokenExpiry:    getDurationOrDefault("TOKEN_EXPIRY", 24*time.Hour),
	}
}

func mustGetEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("Environment variable %s is required", key)
	}
	return value
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("Environment variable %s is not a valid duration: %v", key, err)
	}
	return d
}
