package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all runtime settings, loaded from environment variables.
type Config struct {
	DatabaseURL        string
	DataPath           string
	Port               string
	JWTSecret          string
	DeviceMasterSecret string
	AdminUsername      string
	AdminPassword      string
	LateThreshold      time.Duration
}

// Load reads configuration from the environment, applying defaults.
func Load() *Config {
	return &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		DataPath:           getEnv("DATA_PATH", "staffing.db"),
		Port:               getEnv("PORT", "8000"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		DeviceMasterSecret: getEnv("DEVICE_MASTER_SECRET", ""),
		AdminUsername:      getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:      getEnv("ADMIN_PASSWORD", "admin123"),
		LateThreshold:      time.Duration(getEnvInt("LATE_THRESHOLD_MINUTES", 5)) * time.Minute,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n >= 0 {
			return n
		}
	}
	return defaultValue
}
