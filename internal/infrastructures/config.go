package infrastructures

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	DATABASE_URL                string
	AUTH_BASE_URL               string
	REDIS_ADDRESS               string
	REDIS_PASSWORD              string
	PORT                        string
	ALLOW_RESUBMIT_AFTER_REJECT bool
	ORDER_CLAIM_TTL_HOURS       int
}

var Config *AppConfig

func LoadConfig() *AppConfig {
	godotenv.Load()

	Config = &AppConfig{
		DATABASE_URL:                os.Getenv("DATABASE_URL"),
		AUTH_BASE_URL:               os.Getenv("AUTH_BASE_URL"),
		REDIS_ADDRESS:               os.Getenv("REDIS_ADDRESS"),
		REDIS_PASSWORD:              os.Getenv("REDIS_PASSWORD"),
		PORT:                        getEnv("PORT", "8080"),
		ALLOW_RESUBMIT_AFTER_REJECT: getEnvBool("ALLOW_RESUBMIT_AFTER_REJECT", false),
		ORDER_CLAIM_TTL_HOURS:       getEnvInt("ORDER_CLAIM_TTL_HOURS", 72),
	}

	return Config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
