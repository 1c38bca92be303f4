package config

import (
	"os"
	"time"
)

// LoadTestConfig populates AppConfig with test defaults so tests do not
// depend on a .env file being present.
func LoadTestConfig() {
	if os.Getenv("JWT_SECRET") == "" {
		os.Setenv("JWT_SECRET", "test-secret")
	}

	AppConfig = Config{
		Port:           "3000",
		JWTSecret:      os.Getenv("JWT_SECRET"),
		DBPath:         ":memory:",
		ChainMode:      "mock",
		ChainNetwork:   "ethereum",
		CheckInterval:  time.Hour,
		PaymentTimeout: 5 * time.Second,
		TokenExpiry:    24 * time.Hour,
	}
}
