package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	FirebaseProject string
	Environment     string
	JobToken        string

	SwapRetentionDays     int
	PresenceWindowSeconds int
	JobPageSize           int
	CleanupChildDelayMs   int
	CleanupChildBatchSize int
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		FirebaseProject: getEnv("FIREBASE_PROJECT_ID", ""),
		Environment:     getEnv("ENVIRONMENT", "development"),
		JobToken:        getEnv("JOB_TOKEN", ""),

		SwapRetentionDays:     getEnvAsInt("SWAP_RETENTION_DAYS", 30),
		PresenceWindowSeconds: getEnvAsInt("PRESENCE_WINDOW_SECONDS", 30),
		JobPageSize:           getEnvAsInt("JOB_PAGE_SIZE", 100),
		CleanupChildDelayMs:   getEnvAsInt("CLEANUP_CHILD_DELAY_MS", 500),
		CleanupChildBatchSize: getEnvAsInt("CLEANUP_CHILD_BATCH_SIZE", 100),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
